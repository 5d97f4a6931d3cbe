package session

import (
	"ImageGenClient/internal/ai"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	promptText     = "Enter a prompt (or 'quit' to exit): "
	farewellText   = "Goodbye!"
	quitCommand    = "quit"
	timestampStyle = "20060102_150405"
	policyHint     = "Hint: the prompt may violate the content policy or be malformed. Try rephrasing it."
)

// Downloader сохраняет картинку по ссылке и возвращает путь к файлу или пустую строку.
type Downloader interface {
	Download(ctx context.Context, url string, filename string) string
}

// Session интерактивный цикл: читает промпт, генерирует картинку и сохраняет её.
type Session struct {
	client     ai.ImageClient
	downloader Downloader
	in         *bufio.Reader
	out        io.Writer
	logger     *zap.SugaredLogger
	now        func() time.Time

	count int    // Счётчик успешных генераций
	last  string // Последний ввод пользователя
}

func New(client ai.ImageClient, downloader Downloader, in io.Reader, out io.Writer, logger *zap.SugaredLogger) *Session {
	return &Session{
		client:     client,
		downloader: downloader,
		in:         bufio.NewReader(in),
		out:        out,
		logger:     logger.With("session", uuid.NewString()),
		now:        time.Now,
	}
}

// WithClock подменяет источник времени для имён файлов.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Count количество успешных генераций за сессию.
func (s *Session) Count() int { return s.count }

// LastInput последняя прочитанная строка.
func (s *Session) LastInput() string { return s.last }

// FileName строит имя файла вида image_001_20240101_120000.png.
func FileName(count int, t time.Time) string {
	return fmt.Sprintf("image_%03d_%s.png", count, t.Format(timestampStyle))
}

// Run выполняет цикл до команды quit, пустого ввода, конца ввода или отмены контекста.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Infow("Session started")
	done := make(chan struct{})
	defer close(done)
	lines := s.readLines(done)

	for {
		if err := ctx.Err(); err != nil {
			return s.stop(err)
		}

		fmt.Fprint(s.out, promptText)
		line, err := s.readLine(ctx, lines)
		// отмена во время ожидания ввода: введённую строку не отправляем
		if ctxErr := ctx.Err(); ctxErr != nil {
			fmt.Fprintln(s.out)
			return s.stop(ctxErr)
		}
		s.last = line
		if err != nil || isExit(line) {
			fmt.Fprintln(s.out, farewellText)
			s.logger.Infow("Session finished", "images", s.count)
			return nil
		}

		s.generate(ctx, line)
	}
}

func (s *Session) stop(err error) error {
	fmt.Fprintln(s.out, farewellText)
	s.logger.Infow("Session stopped", "reason", err, "images", s.count)
	return err
}

type inputLine struct {
	text string
	err  error
}

// readLines читает ввод в отдельной горутине, чтобы ожидание строки можно было прервать.
// Горутина завершается при конце ввода, ошибке чтения или закрытии done.
func (s *Session) readLines(done <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		for {
			text, err := s.in.ReadString('\n')
			if text != "" {
				select {
				case lines <- inputLine{text: strings.TrimRight(text, "\r\n")}:
				case <-done:
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					select {
					case lines <- inputLine{err: err}:
					case <-done:
					}
				}
				return
			}
		}
	}()
	return lines
}

// readLine ждёт следующую строку; конец ввода возвращается как io.EOF.
func (s *Session) readLine(ctx context.Context, lines <-chan inputLine) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			s.logger.Warnw("Failed to read input", "error", l.err)
			return "", l.err
		}
		return l.text, nil
	}
}

func isExit(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.EqualFold(trimmed, quitCommand)
}

// generate выполняет одну итерацию; ошибки сообщаются пользователю и не прерывают цикл.
func (s *Session) generate(ctx context.Context, prompt string) {
	fmt.Fprintln(s.out, "Generating image...")
	s.logger.Debugw("Generating image", "prompt", prompt)

	img, err := s.client.Generate(ctx, prompt, ai.DefaultOptions())
	if err != nil {
		s.reportError(err)
		return
	}

	s.count++
	if img.RevisedPrompt != "" && img.RevisedPrompt != prompt {
		fmt.Fprintf(s.out, "Revised prompt: %s\n", img.RevisedPrompt)
	}

	filename := FileName(s.count, s.now())
	s.logger.Infow("Image generated", "count", s.count, "file", filename)
	s.downloader.Download(ctx, img.URL, filename)
}

func (s *Session) reportError(err error) {
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		s.logger.Warnw("Image generation rejected", "status", apiErr.StatusCode, "code", apiErr.Code, "error", apiErr.Message)
		fmt.Fprintf(s.out, "API error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		if apiErr.StatusCode == http.StatusBadRequest {
			fmt.Fprintln(s.out, policyHint)
		}
		return
	}
	s.logger.Errorw("Unexpected error while generating image", "error", err)
	fmt.Fprintf(s.out, "Unexpected error while generating image: %v\n", err)
}
