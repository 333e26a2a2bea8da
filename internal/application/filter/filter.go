package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
)

var (
	ErrNilRecord       = errors.New("filter: record is nil")
	ErrNilFilterParams = errors.New("filter: filter params are nil")
)

// Accept reports whether record satisfies every criterion in params.
// Level and thread are exact case-insensitive matches, message and logger
// are case-insensitive substring matches, and the date is an inclusive floor.
func Accept(record *entity.LogRecord, params *entity.FilterParams) (bool, error) {
	if record == nil {
		return false, ErrNilRecord
	}
	if params == nil {
		return false, ErrNilFilterParams
	}

	return matchLevel(record, params) &&
		matchDate(record, params) &&
		matchThread(record, params) &&
		matchMessage(record, params) &&
		matchLogger(record, params), nil
}

func matchLevel(record *entity.LogRecord, params *entity.FilterParams) bool {
	name := params.Level.Name()
	if name == "" {
		return true
	}
	return strings.EqualFold(record.Level, name)
}

func matchDate(record *entity.LogRecord, params *entity.FilterParams) bool {
	if params.Date == nil {
		return true
	}
	return !record.Timestamp.Before(*params.Date)
}

func matchThread(record *entity.LogRecord, params *entity.FilterParams) bool {
	if params.Thread == "" {
		return true
	}
	return strings.EqualFold(record.Thread, params.Thread)
}

func matchMessage(record *entity.LogRecord, params *entity.FilterParams) bool {
	if params.Message == "" {
		return true
	}
	return containsFold(record.Message, params.Message)
}

func matchLogger(record *entity.LogRecord, params *entity.FilterParams) bool {
	if params.Logger == "" {
		return true
	}
	return containsFold(record.Logger, params.Logger)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}

// Env is the environment an optional filter expression is evaluated against.
type Env struct {
	Level     string
	Thread    string
	Logger    string
	Message   string
	Throwable string
	Timestamp time.Time
	Custom    map[string]string
}

func newEnv(record *entity.LogRecord) Env {
	env := Env{
		Level:     record.Level,
		Thread:    record.Thread,
		Logger:    record.Logger,
		Message:   record.Message,
		Timestamp: record.Timestamp,
		Custom:    record.CustomFields,
	}
	if record.Throwable != nil {
		env.Throwable = *record.Throwable
	}
	if env.Custom == nil {
		env.Custom = map[string]string{}
	}
	return env
}

// Filter binds FilterParams to a compiled expression so the expression is
// parsed once per scan rather than once per record.
type Filter struct {
	params  *entity.FilterParams
	program *vm.Program
}

func New(params *entity.FilterParams) (*Filter, error) {
	if params == nil {
		return nil, ErrNilFilterParams
	}

	f := &Filter{params: params}
	if strings.TrimSpace(params.Expression) == "" {
		return f, nil
	}

	program, err := expr.Compile(params.Expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter expression %q: %w", params.Expression, err)
	}
	f.program = program
	return f, nil
}

func (f *Filter) Params() *entity.FilterParams {
	return f.params
}

func (f *Filter) Accept(record *entity.LogRecord) (bool, error) {
	if f == nil {
		return false, ErrNilFilterParams
	}
	ok, err := Accept(record, f.params)
	if err != nil || !ok || f.program == nil {
		return ok, err
	}

	out, err := expr.Run(f.program, newEnv(record))
	if err != nil {
		return false, fmt.Errorf("evaluate filter expression: %w", err)
	}
	accepted, _ := out.(bool)
	return accepted, nil
}
