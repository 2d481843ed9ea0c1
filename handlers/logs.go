package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/afero"
)

const (
	defaultLogLines = 200
	maxLogLines     = 5000
)

// LogsHandler exposes the tail of the server log file.
type LogsHandler struct {
	logger  *log.Logger
	fs      afero.Fs
	logFile string
}

func NewLogsHandler(logger *log.Logger, fs afero.Fs, logFile string) *LogsHandler {
	h := &LogsHandler{
		logger:  logger,
		fs:      fs,
		logFile: logFile,
	}
	if h.logger == nil {
		h.logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	if h.fs == nil {
		h.fs = afero.NewOsFs()
	}
	return h
}

type logsResponse struct {
	File  string   `json:"file"`
	Lines []string `json:"lines"`
}

// Tail handles GET /api/logs?lines=N.
func (h *LogsHandler) Tail(w http.ResponseWriter, r *http.Request) {
	n := defaultLogLines
	if raw := r.URL.Query().Get("lines"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid lines %q", raw))
			return
		}
		n = v
	}
	if n > maxLogLines {
		n = maxLogLines
	}

	if h.logFile == "" {
		writeError(w, http.StatusNotFound, "no log file configured")
		return
	}

	lines, err := h.tail(n)
	if errors.Is(err, os.ErrNotExist) {
		writeJSON(w, http.StatusOK, logsResponse{File: h.logFile, Lines: []string{}})
		return
	}
	if err != nil {
		h.logger.Printf("[logs] failed to read %s: %v", h.logFile, err)
		writeError(w, http.StatusInternalServerError, "failed to read log file")
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, logsResponse{File: h.logFile, Lines: lines})
}

func (h *LogsHandler) tail(n int) ([]string, error) {
	file, err := h.fs.Open(h.logFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return readLastNLines(file, stat.Size(), n)
}

// readLastNLines reads r backwards in chunks until it has n complete lines.
func readLastNLines(r io.ReaderAt, size int64, n int) ([]string, error) {
	if size == 0 || n <= 0 {
		return nil, nil
	}

	const chunkSize = 64 * 1024
	var (
		lines    []string
		leftover []byte
		position = size
	)

	for position > 0 && len(lines) < n {
		readSize := int64(chunkSize)
		if position < readSize {
			readSize = position
		}
		position -= readSize

		chunk := make([]byte, readSize, int(readSize)+len(leftover))
		if _, err := r.ReadAt(chunk, position); err != nil && err != io.EOF {
			return nil, err
		}
		chunk = append(chunk, leftover...)

		parts := bytes.Split(chunk, []byte("\n"))
		// parts[0] may continue in the previous chunk.
		leftover = parts[0]

		for i := len(parts) - 1; i > 0 && len(lines) < n; i-- {
			line := string(bytes.TrimRight(parts[i], "\r"))
			if line == "" && i == len(parts)-1 && len(lines) == 0 {
				// trailing newline at end of file
				continue
			}
			lines = append(lines, line)
		}
	}

	if len(leftover) > 0 && len(lines) < n {
		lines = append(lines, string(bytes.TrimRight(leftover, "\r")))
	}

	// lines were collected newest first
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
