// mobilecart/services/health_service.go

package services

import (
	"context"

	"github.com/sirupsen/logrus"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/norun9/mobilecart/storage"
)

// HealthCheckService implements grpc.health.v1.Health on top of the cart storage.
type HealthCheckService struct {
	healthpb.UnimplementedHealthServer
	storage storage.Storage
	log     logrus.FieldLogger
}

// NewHealthCheckService constructor
func NewHealthCheckService(st storage.Storage, log logrus.FieldLogger) *HealthCheckService {
	return &HealthCheckService{storage: st, log: log}
}

// Check reports SERVING while the storage answers Ping.
func (h *HealthCheckService) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if h.storage.Ping(ctx) {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
	}
	h.log.WithField("service", req.GetService()).Warn("HealthCheckService: storage ping failed")
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
}
