package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/logging"
	sc "github.com/dmitrijs2005/pageclean/internal/server/config"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
)

// Uploader is the part of the S3 client used by exports.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// NewS3Uploader builds an S3 client for the configured S3-compatible backend.
func NewS3Uploader(ctx context.Context, cfg *sc.Config) (*s3.Client, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// TranscriptMeta is the _meta document published next to a transcript.
type TranscriptMeta struct {
	Name           string         `json:"name"`
	Incomplete     bool           `json:"incomplete"`
	Subdomains     []string       `json:"subdomains"`
	Copy           TranscriptCopy `json:"copy"`
	MainTranscript string         `json:"main_transcript"`
	UTCLaunchTime  string         `json:"utc_launch_time"`
}

type TranscriptCopy struct {
	Title      string   `json:"title"`
	UpperTitle string   `json:"upper_title"`
	LowerTitle string   `json:"lower_title"`
	Cleaners   []string `json:"cleaners"`
}

// ExportResult names the objects an export wrote.
type ExportResult struct {
	TranscriptKey string
	MetaKey       string
	Pages         int
}

// ExportService publishes a collection's cleaned transcript to object storage.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    Uploader
	bucket      string
	logger      logging.Logger
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, uploader Uploader, bucket string, logger logging.Logger) *ExportService {
	return &ExportService{
		db:          db,
		repomanager: m,
		uploader:    uploader,
		bucket:      bucket,
		logger:      logger,
	}
}

func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func splitTitle(name string) (string, string) {
	upper, lower, _ := strings.Cut(name, " ")
	return upper, lower
}

// Export writes the transcript of the collection with the given short name
// as <short>/transcripts/<transcriptName>, plus its _meta document. An empty
// transcriptName means common.DefaultTranscriptName.
func (s *ExportService) Export(ctx context.Context, shortName, transcriptName string) (*ExportResult, error) {
	if transcriptName == "" {
		transcriptName = common.DefaultTranscriptName
	}

	collection, err := s.repomanager.Collections(s.db).GetByShortName(ctx, shortName)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", shortName, err)
	}

	pageRepo := s.repomanager.Pages(s.db)
	revisionRepo := s.repomanager.Revisions(s.db)

	pages, err := pageRepo.ListByCollection(ctx, collection.ID)
	if err != nil {
		return nil, err
	}

	var transcript bytes.Buffer
	for _, p := range pages {
		text, err := effectiveText(ctx, revisionRepo, p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number, err)
		}
		fmt.Fprintf(&transcript, "\tPage %d\n", p.Number)
		fmt.Fprintf(&transcript, "\tApproved? %s\n", pythonBool(p.Approved))
		transcript.WriteString(text)
		transcript.WriteString("\n")
	}

	cleaners, err := revisionRepo.AuthorNames(ctx, collection.ID)
	if err != nil {
		return nil, err
	}
	if cleaners == nil {
		cleaners = []string{}
	}
	sort.Strings(cleaners)

	short := strings.ToLower(collection.ShortName)
	upper, lower := splitTitle(collection.Name)
	meta := TranscriptMeta{
		Name:       short,
		Incomplete: true,
		Subdomains: []string{short},
		Copy: TranscriptCopy{
			Title:      collection.Name,
			UpperTitle: upper,
			LowerTitle: lower,
			Cleaners:   cleaners,
		},
		MainTranscript: short + "/" + transcriptName,
		UTCLaunchTime:  collection.StartsOn.UTC().Format("2006-01-02"),
	}

	var metaJSON bytes.Buffer
	enc := json.NewEncoder(&metaJSON)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}

	result := &ExportResult{
		TranscriptKey: short + "/transcripts/" + transcriptName,
		MetaKey:       short + "/transcripts/_meta",
		Pages:         len(pages),
	}

	if err := s.put(ctx, result.TranscriptKey, "text/plain; charset=utf-8", transcript.Bytes()); err != nil {
		return nil, err
	}
	if err := s.put(ctx, result.MetaKey, "application/json", metaJSON.Bytes()); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "transcript exported", "collection", collection.ShortName, "key", result.TranscriptKey, "pages", result.Pages)
	return result, nil
}

func (s *ExportService) put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
