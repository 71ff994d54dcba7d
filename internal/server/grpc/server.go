// Package grpc exposes page leasing and revision submission over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/pageclean/internal/logging"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"github.com/dmitrijs2005/pageclean/internal/server/services"
	"google.golang.org/grpc"
)

type leaseSvc interface {
	NextPage(ctx context.Context, collectionID int64, userID string) (*models.Page, error)
}

type revisionSvc interface {
	Commit(ctx context.Context, pageID int64, userID string, text string) (*services.CommitResult, error)
	EffectiveText(ctx context.Context, page *models.Page) (string, error)
}

type collectionSvc interface {
	Current(ctx context.Context) (*models.Collection, error)
	ByShortName(ctx context.Context, shortName string) (*models.Collection, error)
}

type GRPCServer struct {
	UnimplementedCleaningServer
	address     string
	leases      leaseSvc
	revisions   revisionSvc
	collections collectionSvc
	logger      logging.Logger
	jwtSecret   []byte
}

func NewGRPCServer(a string, l logging.Logger, ls leaseSvc, rs revisionSvc, cs collectionSvc, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		leases:      ls,
		revisions:   rs,
		collections: cs,
		jwtSecret:   []byte(secretKey),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers service
	RegisterCleaningServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
