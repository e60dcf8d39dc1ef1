package ytdlp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"ripmedia/internal/fileutil"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/paths"
	"ripmedia/internal/services"
)

var mkdirTemp = os.MkdirTemp

const outputTemplate = "%(id)s.%(ext)s"

var thumbnailMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Fetch downloads req.URL into a private temporary directory and moves the
// newest finished media file to a free variant of req.OutputPath.
func (c *Client) Fetch(ctx context.Context, req model.FetchRequest, hooks model.FetchHooks) (model.FetchResult, error) {
	final, err := paths.EnsureUnique(req.OutputPath)
	if err != nil {
		return model.FetchResult{}, services.Wrap(services.ErrDownload, model.StageDownloading, "Failed to plan output path", err)
	}
	work, err := mkdirTemp("", "ripmedia-")
	if err != nil {
		return model.FetchResult{}, services.Wrap(services.ErrDownload, model.StageDownloading, "yt-dlp failed", err)
	}
	defer os.RemoveAll(work)

	spec := SelectFormat(req.Audio, req.Format, req.Recode)
	cmd := c.command(req.Cookies).
		Format(spec.Selector).
		Output(filepath.Join(work, outputTemplate)).
		WriteInfoJSON()
	switch {
	case spec.ExtractAudio != "":
		cmd = cmd.ExtractAudio().AudioFormat(spec.ExtractAudio)
	case spec.RecodeVideo != "":
		cmd = cmd.RecodeVideo(spec.RecodeVideo)
	case spec.MergeOutput != "":
		cmd = cmd.MergeOutputFormat(spec.MergeOutput)
	}
	if req.Thumbnail {
		cmd = cmd.WriteThumbnail().ConvertThumbnails("jpg")
	}

	var once sync.Once
	cmd = cmd.ProgressFunc(c.progressInterval, func(update ytdlp.ProgressUpdate) {
		if string(update.Status) == "post_processing" {
			if hooks.OnPostProcess != nil {
				once.Do(func() { hooks.OnPostProcess(spec.PostProcessor) })
			}
			return
		}
		if hooks.OnProgress != nil {
			hooks.OnProgress(progressFrom(update, time.Now()))
		}
	})

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("yt-dlp download starting",
		logging.String(logging.FieldEventType, "download_start"),
		logging.String(logging.FieldURL, req.URL),
		logging.String("format", spec.Selector),
		logging.String("destination", final),
	)

	res, err := runCommand(ctx, cmd, req.URL)
	if err != nil {
		return model.FetchResult{}, services.Wrap(services.ErrDownload, model.StageDownloading,
			"yt-dlp failed: "+cleanError(err, res), nil)
	}

	out := collectOutputs(work)
	if out.media == "" {
		return model.FetchResult{}, services.Errorf(services.ErrDownload, model.StageDownloading,
			"yt-dlp completed but no output file was found.")
	}
	if err := fileutil.MoveFile(out.media, final); err != nil {
		return model.FetchResult{}, services.Wrap(services.ErrDownload, model.StageSaved,
			"Failed to move output file into place", err)
	}

	result := model.FetchResult{Path: final, PostProcessor: spec.PostProcessor}
	if out.info != "" {
		if data, err := os.ReadFile(out.info); err == nil {
			_ = json.Unmarshal(data, &result.Info)
		}
	}
	if out.thumbnail != "" {
		if data, err := os.ReadFile(out.thumbnail); err == nil {
			result.Artwork = data
			result.ArtworkMIME = thumbnailMIME[strings.ToLower(filepath.Ext(out.thumbnail))]
		}
	}
	logger.Info("download saved",
		logging.String(logging.FieldEventType, "download_saved"),
		logging.String("path", final),
	)
	return result, nil
}

type outputs struct {
	media     string
	info      string
	thumbnail string
}

// collectOutputs classifies the files yt-dlp left in dir. The media file is
// the most recently modified finished file that is not metadata or a
// thumbnail.
func collectOutputs(dir string) outputs {
	var out outputs
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	var newest time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			continue
		}
		path := filepath.Join(dir, name)
		if strings.HasSuffix(name, ".info.json") {
			out.info = path
			continue
		}
		if _, ok := thumbnailMIME[strings.ToLower(filepath.Ext(name))]; ok {
			out.thumbnail = path
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if out.media == "" || info.ModTime().After(newest) {
			out.media = path
			newest = info.ModTime()
		}
	}
	return out
}

func progressFrom(update ytdlp.ProgressUpdate, now time.Time) model.Progress {
	p := model.Progress{
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
		Status:          string(update.Status),
	}
	if update.Filename != "" {
		p.Filename = filepath.Base(update.Filename)
	}
	if !update.Started.IsZero() {
		if elapsed := now.Sub(update.Started).Seconds(); elapsed > 0 {
			p.Speed = float64(p.DownloadedBytes) / elapsed
		}
	}
	if eta := update.ETA(); eta > 0 {
		p.ETASeconds = eta.Seconds()
	}
	if pct := p.Percent(); pct >= 0 {
		p.PercentDone = pct
	}
	return p
}
