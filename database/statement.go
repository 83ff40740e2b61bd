package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/satishbabariya/dbkit/query"
	"github.com/satishbabariya/dbkit/sqltext"
	"github.com/spf13/cast"
)

type stmtState int

const (
	statePrepared stmtState = iota
	stateExecuted
	stateClosed
)

// Statement is a prepared statement with its parameter map and the column
// metadata of its result. It moves from prepared to executed on every
// successful Execute and ends closed.
type Statement struct {
	conn    Conn
	dialect query.Dialect
	native  Stmt
	sql     string
	params  sqltext.ParameterMap
	named   bool

	cursor   Cursor
	columns  []string
	buffers  []sql.NullString
	affected int64
	state    stmtState
}

// Prepare rewrites the named parameters of text for conn and prepares it.
func Prepare(ctx context.Context, conn Conn, d query.Dialect, text string) (*Statement, error) {
	s := &Statement{conn: conn, dialect: d, named: conn.NamedParameters()}
	if s.named {
		s.params = sqltext.MapParameterKeysFunc(text, func(int) string { return "" })
		s.sql = text
	} else {
		s.params = sqltext.MapParameterKeysFunc(text, d.Placeholder)
		s.sql = s.params.SQL
	}

	native, err := conn.Prepare(ctx, s.sql)
	if err != nil {
		return nil, &Error{Kind: ErrPrepareFailure, Query: s.sql, Cause: err}
	}
	s.native = native
	return s, nil
}

// SQL returns the text sent to the server.
func (s *Statement) SQL() string { return s.sql }

// Parameters returns the named parameter map of the statement.
func (s *Statement) Parameters() sqltext.ParameterMap { return s.params }

// Execute runs the statement. With args it binds them by position, otherwise
// it looks every named parameter up in bindings. Binding values are read
// now, so late changes to bound references are seen.
func (s *Statement) Execute(ctx context.Context, bindings []query.Binding, args ...any) error {
	if s.state == stateClosed {
		return &Error{Kind: ErrStatementClosed, Query: s.sql}
	}
	if err := s.CloseCursor(); err != nil {
		return err
	}

	values, err := s.arguments(bindings, args)
	if err != nil {
		return err
	}

	cursor, err := s.native.Exec(ctx, values)
	if err != nil {
		return &Error{Kind: ErrExecutionFailure, Query: s.sql, Cause: err}
	}

	s.cursor = cursor
	s.affected = cursor.RowsAffected()
	s.state = stateExecuted
	if s.columns == nil && len(cursor.Columns()) > 0 {
		s.columns = cursor.Columns()
		s.buffers = make([]sql.NullString, len(s.columns))
	}
	return nil
}

func (s *Statement) arguments(bindings []query.Binding, args []any) ([]Arg, error) {
	if len(args) > 0 {
		out := make([]Arg, len(args))
		for i, v := range args {
			out[i] = Arg{Value: v}
		}
		return out, nil
	}

	byKey := make(map[string]query.Binding, len(bindings))
	for _, b := range bindings {
		if !b.Type.Valid() {
			return nil, &Error{
				Kind:    ErrInvalidArgument,
				Query:   s.sql,
				Message: fmt.Sprintf("parameter %q has unsupported type %q", b.Key, b.Type),
				Cause:   query.ErrInvalidParameterType,
			}
		}
		byKey[b.Key] = b
	}

	names := s.params.Names
	if s.named {
		names = s.params.Distinct()
	}

	out := make([]Arg, 0, len(names))
	for _, name := range names {
		b, ok := byKey[name]
		if !ok {
			return nil, &Error{Kind: ErrInvalidArgument, Query: s.sql, Message: "no value bound for :" + name}
		}
		v, err := coerce(b.Value(), b.Type)
		if err != nil {
			return nil, &Error{Kind: ErrInvalidArgument, Query: s.sql, Message: "parameter :" + name, Cause: err}
		}
		arg := Arg{Value: v}
		if s.named {
			arg.Name = name
		}
		out = append(out, arg)
	}
	return out, nil
}

// coerce converts v to the Go type the declared parameter type sends.
func coerce(v any, t query.ParameterType) (any, error) {
	if v == nil || t == query.ParamNull {
		return nil, nil
	}

	switch t {
	case query.ParamInt:
		return cast.ToInt64E(v)
	case query.ParamBool:
		return cast.ToBoolE(v)
	case query.ParamLOB:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		}
		s, err := cast.ToStringE(v)
		return []byte(s), err
	default:
		switch v.(type) {
		case string, []byte, time.Time:
			return v, nil
		}
		return cast.ToStringE(v)
	}
}

// Fetch returns the next row, or nil when the result is exhausted.
func (s *Statement) Fetch() (*Row, error) {
	if s.state != stateExecuted || s.cursor == nil {
		return nil, nil
	}
	if !s.cursor.Next() {
		if err := s.cursor.Err(); err != nil {
			return nil, &Error{Kind: ErrExecutionFailure, Query: s.sql, Cause: err}
		}
		return nil, nil
	}
	if err := s.cursor.Scan(s.buffers); err != nil {
		return nil, &Error{Kind: ErrExecutionFailure, Query: s.sql, Cause: err}
	}

	values := make([]sql.NullString, len(s.buffers))
	copy(values, s.buffers)
	return &Row{columns: s.columns, values: values, dialect: s.dialect}, nil
}

// FetchAs returns the next row in the given shape: []any for FetchNum,
// map[string]any for FetchAssoc and map[any]any for FetchBoth. It returns nil
// when the result is exhausted.
func (s *Statement) FetchAs(mode FetchMode) (any, error) {
	row, err := s.Fetch()
	if err != nil || row == nil {
		return nil, err
	}
	return row.As(mode), nil
}

// Columns returns the result column names cached by the first execution.
func (s *Statement) Columns() []string { return s.columns }

// RowsAffected returns the number of rows changed by the last execution.
func (s *Statement) RowsAffected() int64 { return s.affected }

// CloseCursor releases the current result. The statement stays prepared and
// can be executed again.
func (s *Statement) CloseCursor() error {
	if s.cursor == nil {
		return nil
	}
	err := s.cursor.Close()
	s.cursor = nil
	if s.state == stateExecuted {
		s.state = statePrepared
	}
	if err != nil {
		return &Error{Kind: ErrExecutionFailure, Query: s.sql, Cause: err}
	}
	return nil
}

// Close releases the result and the native statement. Closing twice is a
// no-op.
func (s *Statement) Close() error {
	if s.state == stateClosed {
		return nil
	}
	cursorErr := s.CloseCursor()
	s.state = stateClosed
	if err := s.native.Close(); err != nil {
		return &Error{Kind: ErrExecutionFailure, Query: s.sql, Cause: err}
	}
	return cursorErr
}
