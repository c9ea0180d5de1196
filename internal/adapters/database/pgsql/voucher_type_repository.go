package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxVoucherTypeRepository struct {
	BaseRepository
}

func newPgxVoucherTypeRepository(db DBTX) portsrepo.VoucherTypeRepositoryFacade {
	return &PgxVoucherTypeRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.VoucherTypeRepositoryFacade = (*PgxVoucherTypeRepository)(nil)

const voucherTypeColumns = `id, business_id, name, nature, prefix, starting_number, number_width, is_system,
	created_at, created_by, last_updated_at, last_updated_by`

func scanVoucherType(row pgx.Row) (domain.VoucherType, error) {
	var vt domain.VoucherType
	err := row.Scan(&vt.ID, &vt.BusinessID, &vt.Name, &vt.Nature, &vt.Prefix, &vt.StartingNumber, &vt.NumberWidth,
		&vt.IsSystem, &vt.CreatedAt, &vt.CreatedBy, &vt.LastUpdatedAt, &vt.LastUpdatedBy)
	return vt, err
}

func (r *PgxVoucherTypeRepository) SaveVoucherType(ctx context.Context, vt domain.VoucherType) (int64, error) {
	query := `
		INSERT INTO voucher_types (business_id, name, nature, prefix, starting_number, number_width, is_system,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query, vt.BusinessID, vt.Name, vt.Nature, vt.Prefix, vt.StartingNumber, vt.NumberWidth, vt.IsSystem,
		vt.CreatedAt, vt.CreatedBy, vt.LastUpdatedAt, vt.LastUpdatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save voucher type %q: %w", vt.Name, mapPgError(err))
	}
	return id, nil
}

func (r *PgxVoucherTypeRepository) FindVoucherTypeByID(ctx context.Context, businessID, typeID int64) (*domain.VoucherType, error) {
	vt, err := scanVoucherType(r.db.QueryRow(ctx,
		`SELECT `+voucherTypeColumns+` FROM voucher_types WHERE business_id = $1 AND id = $2`, businessID, typeID))
	if err != nil {
		return nil, notFound(err, "voucher type", typeID)
	}
	return &vt, nil
}

func (r *PgxVoucherTypeRepository) ListVoucherTypes(ctx context.Context, businessID int64) ([]domain.VoucherType, error) {
	rows, err := r.db.Query(ctx, `SELECT `+voucherTypeColumns+` FROM voucher_types WHERE business_id = $1 ORDER BY id`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voucher types: %w", mapPgError(err))
	}
	defer rows.Close()

	var types []domain.VoucherType
	for rows.Next() {
		vt, err := scanVoucherType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher type row: %w", err)
		}
		types = append(types, vt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voucher type rows: %w", mapPgError(err))
	}
	return types, nil
}
