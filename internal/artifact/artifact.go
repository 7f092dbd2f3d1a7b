// Package artifact persists the trained estimator and its encoders as one
// zstd-compressed JSON file.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"bustime.org/internal/categorical"
	"bustime.org/internal/estimator"
	"bustime.org/internal/logging"
)

// FormatVersion is bumped whenever the bundle layout changes.
const FormatVersion = 1

var ErrVersionMismatch = errors.New("unsupported artifact version")

// EncoderClasses are the persisted class lists, in code order.
type EncoderClasses struct {
	Crowd          []string `json:"crowd"`
	Traffic        []string `json:"traffic"`
	UserExperience []string `json:"user_experience"`
}

// Bundle is everything the service needs to predict with the model.
type Bundle struct {
	Version   int                           `json:"version"`
	TrainedAt time.Time                     `json:"trainedAt"`
	Target    string                        `json:"target"`
	Model     *estimator.GroupMeanRegressor `json:"model"`
	Encoders  EncoderClasses                `json:"encoders"`
}

// NewBundle packages a fitted model with the encoders it was trained against.
func NewBundle(model *estimator.GroupMeanRegressor, encoders *categorical.Set, target string, trainedAt time.Time) *Bundle {
	return &Bundle{
		Version:   FormatVersion,
		TrainedAt: trainedAt.UTC(),
		Target:    target,
		Model:     model,
		Encoders: EncoderClasses{
			Crowd:          encoders.Crowd.Classes(),
			Traffic:        encoders.Traffic.Classes(),
			UserExperience: encoders.UserExperience.Classes(),
		},
	}
}

// Label identifies the bundle in logs and responses.
func (b *Bundle) Label() string {
	return fmt.Sprintf("v%d-%s", b.Version, b.TrainedAt.Format("20060102T150405Z"))
}

// EncoderSet rebuilds the encoders.
func (b *Bundle) EncoderSet() (*categorical.Set, error) {
	return categorical.NewSet(b.Encoders.Crowd, b.Encoders.Traffic, b.Encoders.UserExperience)
}

// Estimator wraps the bundled model.
func (b *Bundle) Estimator() *estimator.Estimator {
	return estimator.New(b.Model, b.Label())
}

func (b *Bundle) validate() error {
	if b.Version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrVersionMismatch, b.Version)
	}
	if b.Model == nil {
		return errors.New("artifact has no model")
	}
	return nil
}

// Write encodes b onto w.
func Write(w io.Writer, b *Bundle) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(enc).Encode(b); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	return enc.Close()
}

// Read decodes and validates a bundle.
func Read(r io.Reader) (*Bundle, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var b Bundle
	if err := json.NewDecoder(dec).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Save writes b to path through a temporary file in the same directory, so a
// reader never observes a partial artifact.
func Save(path string, b *Bundle, logger *slog.Logger) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temporary artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer logging.HandleDeferredError(&err, func() error {
		if err == nil {
			return nil
		}
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return rmErr
		}
		return nil
	}, logger, "remove temporary artifact")

	if err = Write(tmp, b); err != nil {
		logging.SafeCloseWithLogging(tmp, logger, "close temporary artifact")
		return err
	}
	if err = tmp.Sync(); err != nil {
		logging.SafeCloseWithLogging(tmp, logger, "close temporary artifact")
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads the artifact at path.
func Load(path string, logger *slog.Logger) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(f, logger, "close artifact")

	b, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return b, nil
}
