package http

import (
	"context"

	"betlab/internal/services"
	"betlab/internal/storage"
	"betlab/pkg/contracts/domain"
)

// BetServiceInterface is the contract the handlers program against. The
// concrete implementation is services.BetService; tests substitute fakes.
type BetServiceInterface interface {
	ProcessUpload(ctx context.Context, fileName string, data []byte) (*services.UploadResult, error)
	GetRecord(ctx context.Context, id int64) (*domain.BetRecord, error)
	ListFiles(ctx context.Context) ([]storage.FileEntry, error)
	GenerateReport(ctx context.Context, id int64) (*domain.ReportArtifact, error)
	PushToELN(ctx context.Context, id int64, title string) (*services.ELNResult, error)
}
