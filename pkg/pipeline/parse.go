package pipeline

import (
	"context"
	"time"

	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/observability"
)

// Parse decodes input in the given format (json or yaml). Malformed or
// empty input yields an INVALID_JSON error.
func Parse(ctx context.Context, input []byte, format string) (jsonvalue.Value, error) {
	if format == "" {
		format = InputJSON
	}
	format, err := errs.ValidateFormat(format, InputFormats...)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, format)
	start := time.Now()

	var v jsonvalue.Value
	switch format {
	case InputYAML:
		v, err = jsonvalue.FromYAML(input)
	default:
		v, err = jsonvalue.Parse(input)
	}
	hooks.OnParseComplete(ctx, format, len(input), time.Since(start), err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidJSON, err, "parse %s input", format)
	}
	return v, nil
}
