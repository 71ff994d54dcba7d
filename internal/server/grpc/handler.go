package grpc

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC codes. A lost lease is the only
// error a client is expected to recover from, by asking for a new page.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrLeaseExpired):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func callerID(ctx context.Context) (string, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return id, nil
}

func (s *GRPCServer) collectionFor(ctx context.Context, req *structpb.Struct) (*models.Collection, error) {
	if short := req.GetFields()["collection"].GetStringValue(); short != "" {
		return s.collections.ByShortName(ctx, short)
	}
	return s.collections.Current(ctx)
}

// NextPage leases the caller's next page.
//
// Request:  {collection?: string}  (short name; the current collection if empty)
// Response: {found: bool, collection, page_id, number, text, expires_at}
func (s *GRPCServer) NextPage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	collection, err := s.collectionFor(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "collection lookup failed", "error", err)
		return nil, toStatus(err)
	}

	page, err := s.leases.NextPage(ctx, collection.ID, userID)
	if err != nil {
		s.logger.Error(ctx, "next page failed", "collection", collection.ShortName, "error", err)
		return nil, toStatus(err)
	}
	if page == nil {
		return structpb.NewStruct(map[string]any{"found": false, "collection": collection.ShortName})
	}

	text, err := s.revisions.EffectiveText(ctx, page)
	if err != nil {
		s.logger.Error(ctx, "effective text failed", "page", page.ID, "error", err)
		return nil, toStatus(err)
	}

	s.logger.Debug(ctx, "page leased", "collection", collection.ShortName, "page", page.Number, "user", userID)

	return structpb.NewStruct(map[string]any{
		"found":      true,
		"collection": collection.ShortName,
		"page_id":    page.ID,
		"number":     page.Number,
		"text":       text,
		"expires_at": page.LockedUntil.Time.UTC().Format(time.RFC3339),
	})
}

// maxPageID is the largest integer a JSON number carries exactly.
const maxPageID = 1 << 53

// pageIDFrom accepts whole numbers in [1, maxPageID].
func pageIDFrom(v *structpb.Value) (int64, bool) {
	raw, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	n := raw.NumberValue
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 1 || n > maxPageID || n != math.Trunc(n) {
		return 0, false
	}
	return int64(n), true
}

// SubmitRevision commits the caller's text for a leased page.
//
// Request:  {page_id: number, text: string}
// Response: {approved: bool, kind: "cleaned"|"approved"}
func (s *GRPCServer) SubmitRevision(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	fields := req.GetFields()
	pageID, ok := pageIDFrom(fields["page_id"])
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "page_id must be a positive integer")
	}
	text, ok := fields["text"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}

	result, err := s.revisions.Commit(ctx, pageID, userID, text.StringValue)
	if err != nil {
		if errors.Is(err, common.ErrLeaseExpired) {
			s.logger.Info(ctx, "submission after lease loss", "page", pageID, "user", userID)
		} else {
			s.logger.Error(ctx, "commit failed", "page", pageID, "user", userID, "error", err)
		}
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{
		"approved": result.Approved,
		"kind":     string(result.Kind),
	})
}

func (s *GRPCServer) Ping(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {

	return structpb.NewStruct(map[string]any{"status": "OK"})

}
