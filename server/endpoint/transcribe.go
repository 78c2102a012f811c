package endpoint

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/voxkit/diarization"
	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/storage"
	"github.com/kbukum/voxkit/transcript"
	"github.com/kbukum/voxkit/util"
	"github.com/kbukum/voxkit/validation"
)

// UploadField is the multipart field carrying the recording.
const UploadField = "file"

// Transcriber runs one transcription job. *transcript.Pipeline implements it.
type Transcriber interface {
	Run(ctx context.Context, req transcript.Request) (*transcript.Transcript, error)
}

// TranscribeOptions configures the upload handler.
type TranscribeOptions struct {
	// Storage receives the rendered transcript. Required.
	Storage storage.Storage
	// TempDir stages uploads while they are transcribed. Defaults to os.TempDir().
	TempDir string
	// Diarization holds the server-side tuning; query parameters override
	// the threshold, speaker cap and silhouette switch per request.
	Diarization diarization.Config
	// Logger defaults to the "transcribe" logger.
	Logger *logger.Logger
	// Now is the clock used for transcript file names.
	Now func() time.Time
}

// TranscribeResponse is the success body of POST /transcribe.
type TranscribeResponse struct {
	Status     string   `json:"status"`
	Transcript string   `json:"transcript"`
	SavedTo    string   `json:"saved_to"`
	Language   string   `json:"language,omitempty"`
	Duration   float64  `json:"duration"`
	Speakers   int      `json:"speakers,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// transcribeQuery holds the per-request switches. Unset optional values keep
// the server configuration.
type transcribeQuery struct {
	Translate        bool     `form:"translate"`
	Diarize          bool     `form:"diarize"`
	DiarizeThreshold *float64 `form:"diarize_threshold" validate:"omitempty,gt=0,lte=2"`
	MaxSpeakers      *int     `form:"max_speakers" validate:"omitempty,gte=1,lte=32"`
	UseSilhouette    *bool    `form:"use_silhouette"`
	Language         string   `form:"language" validate:"omitempty,max=16"`
}

// Transcribe returns the POST /transcribe handler. It stages the multipart
// upload in a temp file, runs the transcriber, saves the rendered text and
// answers {status, transcript, saved_to}. The staged file is always removed.
func Transcribe(t Transcriber, opts TranscribeOptions) gin.HandlerFunc {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get("transcribe")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Diarization.ApplyDefaults()

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := opts.Logger.WithContext(ctx)

		var q transcribeQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			RespondWithError(c, errors.Validation("invalid query parameters").WithCause(err))
			return
		}
		if err := validation.Validate(q); err != nil {
			RespondWithError(c, err)
			return
		}

		file, err := c.FormFile(UploadField)
		if err != nil {
			if isTooLarge(err) {
				RespondWithError(c, err)
				return
			}
			RespondWithError(c, errors.MissingField(UploadField))
			return
		}
		uploadName := util.SanitizeFilename(file.Filename, "upload")

		staged := filepath.Join(opts.TempDir, uuid.NewString()+strings.ToLower(filepath.Ext(uploadName)))
		if err := c.SaveUploadedFile(file, staged); err != nil {
			RespondWithError(c, err)
			return
		}
		defer func() {
			if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
				log.Warn("could not remove staged upload", logger.ErrorFields("cleanup", err))
			}
		}()

		cfg := opts.Diarization
		if q.DiarizeThreshold != nil {
			cfg.DistanceThreshold = *q.DiarizeThreshold
		}
		if q.MaxSpeakers != nil {
			cfg.MaxSpeakers = *q.MaxSpeakers
		}
		if q.UseSilhouette != nil {
			cfg.UseSilhouette = *q.UseSilhouette
		}

		log.Info("transcription requested", logger.Fields(
			"file", uploadName,
			"bytes", file.Size,
			"translate", q.Translate,
			"diarize", q.Diarize,
		))

		result, err := t.Run(ctx, transcript.Request{
			AudioPath:   staged,
			Language:    q.Language,
			Translate:   q.Translate,
			Diarize:     q.Diarize,
			Diarization: cfg,
			RequestID:   logger.RequestIDFromContext(ctx),
		})
		if err != nil {
			log.Error("transcription failed", logger.ErrorFields("transcribe", err))
			RespondWithError(c, err)
			return
		}

		text := result.Render()
		savedTo, err := transcript.Save(ctx, opts.Storage, text, transcript.UniqueFilename(uploadName, opts.Now()))
		if err != nil {
			log.Error("could not save transcript", logger.ErrorFields("save", err))
			RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, TranscribeResponse{
			Status:     "success",
			Transcript: text,
			SavedTo:    savedTo,
			Language:   result.Language,
			Duration:   result.Duration,
			Speakers:   result.Speakers(),
			Warnings:   result.Warnings(),
		})
	}
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return stderrors.As(err, &tooLarge)
}
