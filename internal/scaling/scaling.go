// Package scaling sets the desired task count of one ECS service.
//
// Unlike the check routine, failures here are returned to the caller so
// the invoking job is marked failed.
package scaling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"go.uber.org/zap"
)

var (
	ErrMissingCount  = errors.New("desired_count is required")
	ErrNegativeCount = errors.New("desired_count must not be negative")
	ErrCountTooLarge = errors.New("desired_count exceeds the 32-bit service limit")
)

// ECSAPI is the subset of *ecs.Client used here.
type ECSAPI interface {
	UpdateService(ctx context.Context, in *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error)
}

type Scaler struct {
	Client  ECSAPI
	Cluster string
	Service string
	Logger  *zap.Logger
}

func New(client ECSAPI, cluster, service string, logger *zap.Logger) *Scaler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scaler{Client: client, Cluster: cluster, Service: service, Logger: logger}
}

// Apply requests desired running tasks for the configured service.
func (s *Scaler) Apply(ctx context.Context, desired int) error {
	if desired < 0 {
		return ErrNegativeCount
	}
	if desired > math.MaxInt32 {
		return ErrCountTooLarge
	}
	if s.Cluster == "" || s.Service == "" {
		return errors.New("cluster and service must be set")
	}
	out, err := s.Client.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:      aws.String(s.Cluster),
		Service:      aws.String(s.Service),
		DesiredCount: aws.Int32(int32(desired)),
	})
	if err != nil {
		s.Logger.Error("scale_failed",
			zap.String("cluster", s.Cluster),
			zap.String("service", s.Service),
			zap.Int("desired_count", desired),
			zap.Error(err),
		)
		return fmt.Errorf("update service %s/%s to %d: %w", s.Cluster, s.Service, desired, err)
	}

	fields := []zap.Field{
		zap.String("cluster", s.Cluster),
		zap.String("service", s.Service),
		zap.Int("desired_count", desired),
	}
	if out != nil && out.Service != nil {
		fields = append(fields, zap.Int32("running_count", out.Service.RunningCount))
	}
	s.Logger.Info("scale_applied", fields...)
	return nil
}

// Event is the scaling trigger payload.
type Event struct {
	DesiredCount int `json:"desired_count"`
}

// ParseEvent decodes {"desired_count": N}. N may be a JSON number or a
// numeric string.
func ParseEvent(b []byte) (Event, error) {
	var raw struct {
		DesiredCount json.RawMessage `json:"desired_count"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(b), &raw); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	v := strings.TrimSpace(string(raw.DesiredCount))
	if v == "" || v == "null" {
		return Event{}, ErrMissingCount
	}
	if strings.HasPrefix(v, `"`) {
		var s string
		if err := json.Unmarshal(raw.DesiredCount, &s); err != nil {
			return Event{}, fmt.Errorf("decode desired_count: %w", err)
		}
		v = strings.TrimSpace(s)
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		if n < 0 {
			return Event{}, ErrNegativeCount
		}
		return Event{}, fmt.Errorf("desired_count %q: %w", v, ErrCountTooLarge)
	}
	if err != nil {
		return Event{}, fmt.Errorf("desired_count %q is not an integer", v)
	}
	if n < 0 {
		return Event{}, ErrNegativeCount
	}
	return Event{DesiredCount: int(n)}, nil
}
