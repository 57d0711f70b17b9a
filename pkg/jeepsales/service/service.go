// Package service implements the catalog lookup: it validates the optional
// model and trim, runs one filtered query and turns an empty result into
// ErrNotFound.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/dal"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

var trimPattern = regexp.MustCompile(`^[A-Za-z0-9 ]*$`)

// FieldError describes one rejected parameter
type FieldError struct {
	Field string
	Value string
	Rule  string
}

// ValidationError lists every rejected parameter of a request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s=%q fails %s", f.Field, f.Value, f.Rule))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type fetchParams struct {
	Model string `validate:"omitempty,jeepmodel"`
	Trim  string `validate:"omitempty,max=30,trim"`
}

// JeepSalesService answers catalog queries
type JeepSalesService struct {
	repo     dal.Repository
	validate *validator.Validate
	log      *slog.Logger
}

// New returns a service reading from repo; a nil logger discards output
func New(repo dal.Repository, log *slog.Logger) *JeepSalesService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &JeepSalesService{
		repo:     repo,
		validate: newValidator(),
		log:      log,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("jeepmodel", func(fl validator.FieldLevel) bool {
		return dal.JeepModel(fl.Field().String()).Valid()
	})
	v.RegisterValidation("trim", func(fl validator.FieldLevel) bool {
		return trimPattern.MatchString(fl.Field().String())
	})
	return v
}

// FetchJeeps returns the catalog rows matching model and trim exactly.
// An empty argument is treated as not supplied.
func (s *JeepSalesService) FetchJeeps(ctx context.Context, model, trim string) ([]dal.Jeep, error) {
	s.log.InfoContext(ctx, "fetch jeeps", "model", model, "trim", trim)

	params := fetchParams{Model: model, Trim: trim}
	if err := s.validate.StructCtx(ctx, params); err != nil {
		return nil, toValidationError(err)
	}

	var filter dal.JeepFilter
	if model != "" {
		m := dal.JeepModel(model)
		filter.Model = &m
	}
	if trim != "" {
		filter.Trim = &trim
	}

	jeeps, err := s.repo.FetchJeeps(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch jeeps: %w", err)
	}

	if len(jeeps) == 0 {
		return nil, fmt.Errorf("%w: No Jeeps found with model=%s and trim=%s", ErrNotFound, model, trim)
	}

	return jeeps, nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: strings.ToLower(fe.Field()),
			Value: fmt.Sprint(fe.Value()),
			Rule:  fe.Tag(),
		})
	}
	return out
}
