package observability

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ca-srg/osrequests/internal/config"
)

const (
	defaultServiceName     = "osrequests"
	protocolHTTP           = "http/protobuf"
	protocolGRPC           = "grpc"
	resourceServiceNameKey = "service.name"
)

// Settings are the OpenTelemetry options resolved from the process config.
type Settings struct {
	Enabled              bool
	ServiceName          string
	Endpoint             string
	Protocol             string
	ResourceAttributes   map[string]string
	Sampler              string
	SamplerArg           float64
	MetricExportInterval time.Duration
}

// SettingsFromConfig resolves and validates Settings.
func SettingsFromConfig(cfg *config.Config) (*Settings, error) {
	if cfg == nil {
		return nil, fmt.Errorf("observability: nil configuration")
	}

	attrs, err := parseResourceAttributes(cfg.OTelResourceAttributes)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to parse resource attributes: %w", err)
	}

	s := &Settings{
		Enabled:              cfg.OTelEnabled,
		ServiceName:          strings.TrimSpace(cfg.OTelServiceName),
		Endpoint:             strings.TrimSpace(cfg.OTelExporterOTLPEndpoint),
		Protocol:             cfg.OTelExporterOTLPProtocol,
		ResourceAttributes:   attrs,
		Sampler:              strings.TrimSpace(cfg.OTelTracesSampler),
		SamplerArg:           cfg.OTelTracesSamplerArg,
		MetricExportInterval: cfg.OTelMetricExportInterval,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate fills defaults and checks the exporter settings when enabled.
func (s *Settings) Validate() error {
	if s.ServiceName == "" {
		s.ServiceName = defaultServiceName
	}
	s.Protocol = strings.ToLower(strings.TrimSpace(s.Protocol))
	if s.Protocol == "" {
		s.Protocol = protocolHTTP
	}
	s.Sampler = strings.ToLower(s.Sampler)
	if s.Sampler == "" {
		s.Sampler = "always_on"
	}
	if s.MetricExportInterval <= 0 {
		s.MetricExportInterval = 60 * time.Second
	}
	if s.ResourceAttributes == nil {
		s.ResourceAttributes = make(map[string]string)
	}
	if _, ok := s.ResourceAttributes[resourceServiceNameKey]; !ok {
		s.ResourceAttributes[resourceServiceNameKey] = s.ServiceName
	}

	if !s.Enabled {
		return nil
	}

	if s.Endpoint == "" {
		return fmt.Errorf("observability: OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is true")
	}

	switch s.Protocol {
	case protocolHTTP:
		u, err := url.Parse(s.Endpoint)
		if err != nil {
			return fmt.Errorf("observability: invalid OTLP endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("observability: OTLP endpoint must use http or https with %s", protocolHTTP)
		}
		if u.Host == "" {
			return fmt.Errorf("observability: OTLP endpoint must include a host")
		}
	case protocolGRPC:
		if _, _, err := grpcTarget(s.Endpoint); err != nil {
			return fmt.Errorf("observability: invalid OTLP endpoint for grpc: %w", err)
		}
	default:
		return fmt.Errorf("observability: unsupported OTLP protocol %q", s.Protocol)
	}

	if s.Sampler == "traceidratio" && (s.SamplerArg <= 0 || s.SamplerArg > 1) {
		return fmt.Errorf("observability: OTEL_TRACES_SAMPLER_ARG must be in (0, 1] for traceidratio")
	}

	return nil
}

// parseResourceAttributes reads the OTEL_RESOURCE_ATTRIBUTES format,
// comma separated key=value pairs.
func parseResourceAttributes(input string) (map[string]string, error) {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(input, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid resource attribute %q", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("resource attribute key cannot be empty")
		}
		attrs[key] = strings.TrimSpace(value)
	}
	return attrs, nil
}
