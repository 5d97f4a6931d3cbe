package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var (
	// ErrDownload ошибка сети или ответа сервера при скачивании картинки.
	ErrDownload = errors.New("download failed")
	// ErrWrite ошибка записи файла на диск.
	ErrWrite = errors.New("file write failed")
)

// Saved описывает сохранённый файл.
type Saved struct {
	Path  string
	Bytes int64
}

// Downloader скачивает изображения по ссылке в локальную папку.
type Downloader struct {
	http   *http.Client
	dir    string
	out    io.Writer
	logger *zap.SugaredLogger
}

func NewDownloader(httpClient *http.Client, dir string, out io.Writer, logger *zap.SugaredLogger) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{http: httpClient, dir: dir, out: out, logger: logger}
}

// Download скачивает картинку и сообщает результат в консоль.
// Возвращает путь к файлу или пустую строку при ошибке.
func (d *Downloader) Download(ctx context.Context, url string, filename string) string {
	saved, err := d.Save(ctx, url, filename)
	switch {
	case err == nil:
		fmt.Fprintf(d.out, "Image saved to %s (%d bytes)\n", saved.Path, saved.Bytes)
		return saved.Path
	case errors.Is(err, ErrWrite):
		d.logger.Errorw("Failed to write image file", "file", filename, "error", err)
		fmt.Fprintf(d.out, "Failed to save image file: %v\n", err)
	default:
		d.logger.Errorw("Failed to download image", "url", url, "error", err)
		fmt.Fprintf(d.out, "Failed to download image: %v\n", err)
	}
	return ""
}

// Save создаёт папку при необходимости, скачивает url и пишет байты в dir/filename.
// Ошибки оборачивают ErrDownload или ErrWrite.
func (d *Downloader) Save(ctx context.Context, url string, filename string) (Saved, error) {
	// Гарантируем, что директория существует
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("%w: create %s: %w", ErrWrite, d.dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Saved{}, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return Saved{}, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return Saved{}, fmt.Errorf("%w: status=%d, body=%s", ErrDownload, resp.StatusCode, bytes.TrimSpace(b))
	}

	// Тело читаем целиком до создания файла, чтобы обрыв сети не оставлял пустых файлов
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Saved{}, fmt.Errorf("%w: read body: %w", ErrDownload, err)
	}

	path := filepath.Join(d.dir, filename)
	if err := writeFile(path, data); err != nil {
		return Saved{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	d.logger.Debugw("Image saved", "path", path, "bytes", len(data))
	return Saved{Path: path, Bytes: int64(len(data))}, nil
}

func writeFile(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
