// Package statsd emits the world's tick and flush metrics. The datadog
// client stays behind this package's functions, so swapping vendors
// later means editing one file; a no-op client stands in until Init is
// called with an agent address.
package statsd

import (
	"strings"
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitTickStat reports how long a tick stage took.
func EmitTickStat(start time.Time, stage string) {
	duration := time.Since(start)
	err := Client().Timing("tick", duration, []string{stage}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit tick stat: %v", err)
	}
}

// EmitFlushStat reports how long a store flush took and how many cells it
// wrote.
func EmitFlushStat(start time.Time, cells int) {
	duration := time.Since(start)
	if err := Client().Timing("flush", duration, nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit flush stat: %v", err)
	}
	if err := Client().Count("flush.cells", int64(cells), nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit flush cell count: %v", err)
	}
}

// SpanTags copies statsd style "key:value" tags onto a trace span so a
// metric and its surrounding trace carry the same labels.
func SpanTags(span tracer.Span, tags []string) {
	for _, tag := range tags {
		key, value := tagToTraceTag(tag)
		span.SetTag(key, value)
	}
}

// tagToTraceTag splits a statsd "key:value" tag into a trace tag pair. The
// value keeps any further colons. Tags missing a key or a value map to a
// bare key with a nil value.
func tagToTraceTag(tag string) (string, any) {
	key, value, found := strings.Cut(tag, ":")
	if !found {
		return tag, nil
	}
	if key == "" {
		return value, nil
	}
	if value == "" {
		return key, nil
	}
	return key, value
}

// Init wires up the global statsd client, and when traceAddress is set it
// also starts the tracer so tick spans actually leave the process. Either
// address may be empty; the corresponding client is left disabled.
func Init(address string, traceAddress string, tags []string) error {
	if address == "" && traceAddress == "" {
		return eris.New("address must not be empty")
	}

	if address != "" {
		opts := []ddstatsd.Option{
			// Every metric name gets this prefix.
			ddstatsd.WithNamespace("terra"),
		}
		if len(tags) > 0 {
			opts = append(opts, ddstatsd.WithTags(tags))
		}

		newClient, err := ddstatsd.New(address, opts...)
		if err != nil {
			return err
		}
		client = newClient
	}

	if traceAddress != "" {
		traceOpts := []tracer.StartOption{
			tracer.WithAgentAddr(traceAddress),
			tracer.WithService("terra"),
		}
		for _, tag := range tags {
			key, value := tagToTraceTag(tag)
			traceOpts = append(traceOpts, tracer.WithGlobalTag(key, value))
		}
		tracer.Start(traceOpts...)
	}
	return nil
}
