package sales_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/sales"
	"shopdesk/internal/infrastructure/storage/postgres"
)

const creditsTable = "credits"

// Compile-time check.
var _ sales.CreditRepository = (*CreditRepo)(nil)

// CreditRepo persists customer credits.
type CreditRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewCreditRepo creates a credit repository.
func NewCreditRepo(txManager *postgres.TxManager) *CreditRepo {
	return &CreditRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[sales.Credit](),
	}
}

func (r *CreditRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new credit.
func (r *CreditRepo) Create(ctx context.Context, credit *sales.Credit) error {
	q := r.builder().
		Insert(creditsTable).
		SetMap(postgres.StructToMap(credit))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert credit: %w", err)
	}
	return nil
}

// GetByID retrieves a credit, owner-scoped.
func (r *CreditRepo) GetByID(ctx context.Context, ownerID, creditID id.ID) (*sales.Credit, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(creditsTable).
		Where(squirrel.Eq{"id": creditID}).
		Where(squirrel.Eq{"owner_id": ownerID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var credit sales.Credit
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &credit, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(creditsTable, creditID.String())
		}
		return nil, fmt.Errorf("get credit: %w", err)
	}
	return &credit, nil
}

// Update modifies an existing credit with optimistic locking.
func (r *CreditRepo) Update(ctx context.Context, credit *sales.Credit) error {
	data := postgres.StructToMap(credit)
	delete(data, "id")
	delete(data, "owner_id")
	delete(data, "version")
	delete(data, "created_at")

	q := r.builder().
		Update(creditsTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": credit.ID}).
		Where(squirrel.Eq{"owner_id": credit.OwnerID}).
		Where(squirrel.Eq{"version": credit.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update credit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(creditsTable, credit.ID)
	}
	return nil
}

// ListByOwner retrieves credits, optionally filtered by type, newest first.
func (r *CreditRepo) ListByOwner(ctx context.Context, ownerID id.ID, creditType sales.CreditType) ([]sales.Credit, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(creditsTable).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC")

	if creditType != "" {
		q = q.Where(squirrel.Eq{"credit_type": creditType})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var credits []sales.Credit
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &credits, sql, args...); err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return credits, nil
}
