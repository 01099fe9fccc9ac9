package catalog

import (
	"context"

	// Registers the "mysql" driver name with database/sql so Open can dial
	// the host relational catalog. The planner itself never imports a
	// driver package directly; only this constructor helper does.
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// CatalogRow is one row of the catalog union-all probe. Every column is
// present in every row; unused columns for a given RoleCode are left at
// their zero value by the host query.
type CatalogRow struct {
	TableSchema  string     `db:"TableSchema"`
	TableName    string     `db:"TableName"`
	ColumnName   string     `db:"ColumnName"`
	RoleCode     int        `db:"RoleCode"`
	Reference    string     `db:"Reference"`
	ColumnID     int        `db:"ColumnId"`
	AttributeID  int        `db:"AttributeId"`
	ViewTableID  int        `db:"ViewTableId"`
	ConcreteID   int        `db:"ConcreteId"`
}

// Prober is a connection bound to the caller's active transaction. It
// deliberately exposes only query execution, not transaction lifecycle
// management, which belongs to the surrounding statement execution the
// planner does not own.
type Prober interface {
	// QueryxContext runs a read-only probe and scans rows via StructScan/Map as the
	// caller directs; contexts thread cancellation from the owning
	// transaction, which outlives no longer than its own lifetime.
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

// sqlxProber adapts a *sqlx.Tx (or *sqlx.DB, for tests) to Prober.
type sqlxProber struct {
	queryer interface {
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	}
}

func (p sqlxProber) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return p.queryer.QueryxContext(ctx, query, args...)
}

// NewProber wraps an already-open transaction. The planner never opens or
// commits this transaction; it only issues read probes through it.
func NewProber(tx *sqlx.Tx) Prober {
	return sqlxProber{queryer: tx}
}

// Open dials the host catalog database directly, for callers (tests,
// standalone tools) that don't already have a transaction handle. Production
// callers embedded in the host engine should use NewProber against their own
// transaction instead, so catalog probes observe the same snapshot as the
// rest of the statement.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: open")
	}
	return db, nil
}
