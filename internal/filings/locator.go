package filings

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	apperrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// Locator resolves an entity identifier to the files of its filing.
type Locator interface {
	Locate(ctx context.Context, corpCode string) (*domain.FilingContext, error)
}

// Options configures a DirectoryLocator
type Options struct {
	Root          string
	InstanceExt   string
	LabelMarker   string
	AllowFallback bool
}

// DirectoryLocator finds filings in a directory tree with one
// subdirectory per extracted filing.
type DirectoryLocator struct {
	opts   Options
	logger *slog.Logger
}

// NewDirectoryLocator creates a locator over opts.Root
func NewDirectoryLocator(opts Options, logger *slog.Logger) *DirectoryLocator {
	return &DirectoryLocator{
		opts:   opts,
		logger: logger.With(slog.String("component", "filing_locator")),
	}
}

// Locate picks the filing directory for corpCode. Directories whose name
// starts with corpCode win over directories that merely contain it; when
// neither exists and fallback is allowed, the last directory is used.
func (l *DirectoryLocator) Locate(ctx context.Context, corpCode string) (*domain.FilingContext, error) {
	corpCode = strings.TrimSpace(corpCode)
	if corpCode == "" {
		return nil, apperrors.NewAppValidationError("corp code is required")
	}

	dirs, err := ListDirectories(l.opts.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("filing root "+l.opts.Root).WithContext("corp_code", corpCode)
		}
		return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound, "filing root is not readable", err)
	}
	if len(dirs) == 0 {
		return nil, apperrors.NewNotFoundError("filing directories under "+l.opts.Root).WithContext("corp_code", corpCode)
	}

	chosen, fallback, ok := selectDirectory(dirs, corpCode)
	if !ok || (fallback && !l.opts.AllowFallback) {
		return nil, apperrors.NewNotFoundError("filing directory for "+corpCode).WithContext("corp_code", corpCode)
	}

	if fallback {
		l.logger.WarnContext(ctx, "no directory matches corp code, using fallback directory",
			slog.String("corp_code", corpCode),
			slog.String("directory", chosen.Name),
			slog.Int("candidates", len(dirs)))
	}

	instances, err := FindFiles(chosen.Path, HasSuffixFold(l.opts.InstanceExt))
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound, "filing directory is not readable", err)
	}
	if len(instances) == 0 {
		return nil, apperrors.NewNotFoundError("instance document in "+chosen.Path).
			WithContext("corp_code", corpCode).
			WithContext("directory", chosen.Name)
	}

	filing := &domain.FilingContext{
		CorpCode:     corpCode,
		Root:         l.opts.Root,
		Directory:    chosen.Path,
		InstancePath: instances[0].Path,
		Fallback:     fallback,
	}

	labels, err := FindFiles(chosen.Path, ContainsMarker(l.opts.LabelMarker))
	if err == nil && len(labels) > 0 {
		filing.LabelPath = labels[0].Path
	} else {
		l.logger.InfoContext(ctx, "no label linkbase found, captions fall back to tag names",
			slog.String("directory", chosen.Name))
	}

	l.logger.DebugContext(ctx, "filing located",
		slog.String("corp_code", corpCode),
		slog.String("instance", instances[0].Name),
		slog.Bool("has_labels", filing.HasLabels()),
		slog.Bool("fallback", fallback))

	return filing, nil
}

// ListFilings returns the names of the filing directories under the root
func (l *DirectoryLocator) ListFilings() ([]string, error) {
	dirs, err := ListDirectories(l.opts.Root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		names = append(names, d.Name)
	}
	return names, nil
}

// selectDirectory applies prefix, then substring, then last-directory matching
func selectDirectory(dirs []FileInfo, corpCode string) (FileInfo, bool, bool) {
	for _, d := range dirs {
		if strings.HasPrefix(d.Name, corpCode) {
			return d, false, true
		}
	}
	for _, d := range dirs {
		if strings.Contains(d.Name, corpCode) {
			return d, false, true
		}
	}
	if len(dirs) == 0 {
		return FileInfo{}, false, false
	}
	return dirs[len(dirs)-1], true, true
}
