package handlers

import (
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"prismora-backend/internal/config"
	"prismora-backend/internal/libraries"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UploadKind string

const (
	UploadImage UploadKind = "image"
	UploadVideo UploadKind = "video"
	UploadFile  UploadKind = "file"
)

func init() {
	// not every system mime table knows these
	for ext, typ := range map[string]string{
		".mp4":  "video/mp4",
		".m4v":  "video/mp4",
		".mov":  "video/quicktime",
		".webm": "video/webm",
		".mkv":  "video/x-matroska",
		".heic": "image/heic",
	} {
		_ = mime.AddExtensionType(ext, typ)
	}
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitizeName keeps only [A-Za-z0-9._-], replacing anything else with '_'
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	clean := unsafeNameChars.ReplaceAllString(path.Base(name), "_")
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		return "file"
	}
	return clean
}

// detectMIME resolves the media type from the part header, then the file
// extension, then the content itself.
func detectMIME(declared, filename string, head []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	return mt
}

func kindForMIME(mt string) UploadKind {
	switch {
	case strings.HasPrefix(mt, "image/"):
		return UploadImage
	case strings.HasPrefix(mt, "video/"):
		return UploadVideo
	}
	return UploadFile
}

type UploadHandler struct {
	store  libraries.FileStore
	limits config.UploadLimits
}

func NewUploadHandler(store libraries.FileStore, limits config.UploadLimits) *UploadHandler {
	return &UploadHandler{store: store, limits: limits}
}

func (h *UploadHandler) limitFor(kind UploadKind) int64 {
	switch kind {
	case UploadImage:
		return h.limits.Image
	case UploadVideo:
		return h.limits.Video
	}
	return h.limits.File
}

// Upload accepts any file; the type comes from the "type" field or the MIME type
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	return h.handle(c, "")
}

func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	return h.handle(c, UploadImage)
}

func (h *UploadHandler) UploadVideo(c *fiber.Ctx) error {
	return h.handle(c, UploadVideo)
}

func (h *UploadHandler) handle(c *fiber.Ctx, intent UploadKind) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No file provided")
	}

	declared := UploadKind(strings.ToLower(strings.TrimSpace(c.FormValue("type"))))
	switch declared {
	case "", UploadImage, UploadVideo, UploadFile:
	default:
		return errorJSON(c, fiber.StatusBadRequest, "Invalid upload type")
	}
	if intent != "" && declared != "" && declared != intent {
		return errorJSON(c, fiber.StatusUnsupportedMediaType, "Upload type does not match endpoint")
	}

	f, err := fh.Open()
	if err != nil {
		log.Println(err, "Error opening uploaded file")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read upload")
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		log.Println(err, "Error reading uploaded file")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read upload")
	}
	mimeType := detectMIME(fh.Header.Get("Content-Type"), fh.Filename, head[:n])

	kind := intent
	if kind == "" {
		kind = declared
	}
	if kind == "" {
		kind = kindForMIME(mimeType)
	}
	if kind != UploadFile && kindForMIME(mimeType) != kind {
		return errorJSON(c, fiber.StatusUnsupportedMediaType, "File type "+mimeType+" is not a valid "+string(kind))
	}

	if limit := h.limitFor(kind); fh.Size > limit {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, "File exceeds the "+string(kind)+" size limit")
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		log.Println(err, "Error rewinding uploaded file")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read upload")
	}

	boardID := strings.TrimSpace(c.FormValue("boardId"))
	objectPath := uuid.NewString() + "-" + sanitizeName(fh.Filename)
	if boardID != "" {
		objectPath = sanitizeName(boardID) + "/" + objectPath
	}

	url, err := h.store.Save(c.UserContext(), objectPath, mimeType, f)
	if err != nil {
		log.Println(err, "Error storing upload")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to store upload")
	}

	var board interface{}
	if boardID != "" {
		board = boardID
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url":       url,
		"name":      fh.Filename,
		"sizeBytes": fh.Size,
		"type":      kind,
		"boardId":   board,
	})
}
