// db.go adapts the teacher's internal/database/database.go
// (DatabaseModule/DBConnection over database/sql with the mysql,
// postgres, sqlite3, and mssql drivers blank-imported for their side
// effect of registering with database/sql) into a `Connection`
// LIBOBJECT class: open/query/exec/close. github.com/pkg/errors wraps
// the underlying driver error the same way the teacher's stdlib
// wrappers do (stack-trace-carrying errors rather than fmt.Errorf),
// since that is a dependency this corpus already reaches for at this
// layer and the core's own errors package only models Mint's own
// error kinds, not host I/O failures.
package builtin

import (
	"database/sql"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/value"
)

const nativeKindConnection = "connection"

type dbConn struct {
	db *sql.DB
}

// RegisterDB installs the `Connection` library class: `new
// Connection(driver, dsn)` opens a pool, `.exec(sql)` runs a
// statement and returns the affected row count, `.query(sql)` runs a
// query and returns an Array of Array rows, `.close()` releases the
// pool.
func (r *Registry) RegisterDB(pkg *class.Package) {
	cl, slot := r.NewLibObjectClass(pkg, "Connection")

	r.CreateBuiltinOperator(cl, class.OpNew, 2, func(ctx bytecode.HostContext) (*value.Data, error) {
		driver, err := stringArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		dsn, err := stringArg(ctx, 1)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, typeMismatch(errors.Wrap(err, "opening database connection").Error())
		}
		if err := db.Ping(); err != nil {
			return nil, typeMismatch(errors.Wrap(err, "pinging database").Error())
		}
		return nil, setSelfNative(ctx, slot, &Native{Kind: nativeKindConnection, Value: &dbConn{db: db}})
	})

	r.CreateBuiltinMember(cl, "exec", 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindConnection)
		if err != nil {
			return nil, err
		}
		query, err := stringArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		res, err := n.Value.(*dbConn).db.Exec(query)
		if err != nil {
			return nil, typeMismatch(errors.Wrap(err, "exec failed").Error())
		}
		affected, _ := res.RowsAffected()
		return r.Number(float64(affected)), nil
	})

	r.CreateBuiltinMember(cl, "query", 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindConnection)
		if err != nil {
			return nil, err
		}
		query, err := stringArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		rows, err := n.Value.(*dbConn).db.Query(query)
		if err != nil {
			return nil, typeMismatch(errors.Wrap(err, "query failed").Error())
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return nil, typeMismatch(errors.Wrap(err, "reading columns").Error())
		}

		result := container.NewArray()
		scanTargets := make([]interface{}, len(cols))
		scanValues := make([]interface{}, len(cols))
		for i := range scanValues {
			scanTargets[i] = &scanValues[i]
		}
		for rows.Next() {
			if err := rows.Scan(scanTargets...); err != nil {
				return nil, typeMismatch(errors.Wrap(err, "scanning row").Error())
			}
			row := container.NewArray()
			for _, v := range scanValues {
				row.Push(r.cellValue(v))
			}
			result.Push(r.Array(row))
		}
		return r.Array(result), nil
	})

	r.CreateBuiltinMember(cl, "close", 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindConnection)
		if err != nil {
			return nil, err
		}
		return r.Boolean(n.Value.(*dbConn).db.Close() == nil), nil
	})
}

// cellValue converts one database/sql scan result into a Mint value.
func (r *Registry) cellValue(v interface{}) *value.Data {
	switch t := v.(type) {
	case nil:
		return value.Null
	case []byte:
		return r.String(string(t))
	case string:
		return r.String(t)
	case int64:
		return r.Number(float64(t))
	case float64:
		return r.Number(t)
	case bool:
		return r.Boolean(t)
	default:
		return r.String("")
	}
}
