package service

import (
	"context"
	"errors"
	"strings"

	"knaxim-client/pkg/api"
	"knaxim-client/pkg/apperr"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "knaxim-client/service"

// Requester is the HTTP surface the services need. *api.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, path string) (*api.Response, error)
	Query(ctx context.Context, path string, params api.Form) (*api.Response, error)
	Post(ctx context.Context, path string, body api.Body) (*api.Response, error)
	Put(ctx context.Context, path string, body api.Body) (*api.Response, error)
	Delete(ctx context.Context, path string, body api.Body) (*api.Response, error)
	URL(path ...string) string
}

type base struct {
	client   Requester
	validate *validator.Validate
	debug    bool
}

func newBase(client Requester, debug bool) *base {
	return &base{
		client:   client,
		validate: validator.New(),
		debug:    debug,
	}
}

// buildError normalizes any failure into a *apperr.RequestError. The
// message is the server's when one came back, else the transport's.
func (b *base) buildError(op string, err error) error {
	if err == nil {
		return nil
	}

	var re *apperr.RequestError
	if errors.As(err, &re) {
		return re
	}

	message := err.Error()
	status := 0

	var se *api.StatusError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &se):
		message = se.Message
		status = se.Status
	case errors.As(err, &ve):
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fe.Field()+" failed "+fe.Tag())
		}
		message = "invalid request: " + strings.Join(fields, ", ")
	}

	out := apperr.New(op, message, status, err)
	out.Debug = b.debug
	return out
}

func (b *base) check(op string, req any) error {
	if err := b.validate.Struct(req); err != nil {
		return b.buildError(op, err)
	}
	return nil
}

// fetch runs one request inside a span and decodes the body into T.
func fetch[T any](ctx context.Context, b *base, op string, do func(context.Context) (*api.Response, error)) (*T, error) {
	resp, err := exec(ctx, b, op, do)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := resp.Decode(out); err != nil {
		return nil, b.buildError(op, err)
	}
	return out, nil
}

func exec(ctx context.Context, b *base, op string, do func(context.Context) (*api.Response, error)) (*api.Response, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	resp, err := do(ctx)
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.Status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, b.buildError(op, err)
	}
	return resp, nil
}
