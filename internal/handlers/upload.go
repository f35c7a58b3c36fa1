package handlers

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/studytrack-api/internal/middleware"
	"github.com/arnold/studytrack-api/internal/models"
)

// Upload stores a file for a topic and records it as an attachment. The
// attachment row is only written once the object is stored.
func (h *Handler) Upload(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Please login",
		})
	}

	file, err := c.FormFile("file")
	topicValue := strings.TrimSpace(c.FormValue("topicId"))
	if err != nil || topicValue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing file or topicId",
		})
	}

	topicID, err := strconv.ParseUint(topicValue, 10, 32)
	if err != nil || topicID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topicId",
		})
	}

	if file.Size > h.cfg.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File must be under " + formatSize(h.cfg.MaxUploadBytes),
		})
	}

	ctx := c.UserContext()
	exists, err := h.store.TopicExists(ctx, uint(topicID))
	if err != nil {
		h.log.Error("upload failed", "topicId", topicID, "err", err, "user", user)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Topic not found",
		})
	}

	fileName := cleanFileName(file.Filename)
	key := fmt.Sprintf("topics/%d/%d-%s", topicID, h.now().UnixMilli(), fileName)
	mimeType := file.Header.Get(fiber.HeaderContentType)
	if mimeType == "" {
		mimeType = fiber.MIMEOctetStream
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unreadable file",
		})
	}
	defer src.Close()

	url, err := h.objects.Put(ctx, key, src, mimeType)
	if err != nil {
		h.log.Error("upload failed", "topicId", topicID, "key", key, "err", err, "user", user)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}

	attachment := models.Attachment{
		TopicID:    uint(topicID),
		FileName:   fileName,
		FileURL:    url,
		FileKey:    key,
		FileSize:   file.Size,
		MimeType:   mimeType,
		UploadedBy: user.ID,
	}
	if err := h.store.InsertAttachment(ctx, &attachment); err != nil {
		h.log.Error("attachment not recorded", "topicId", topicID, "key", key, "err", err, "user", user)
		if derr := h.objects.Delete(ctx, key); derr != nil {
			h.log.Warn("stored object not removed", "key", key, "err", derr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}

	return c.JSON(models.UploadResponse{Success: true, URL: url})
}

// cleanFileName keeps the base name of a client supplied file name.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "file"
	}
	return name
}

func formatSize(n int64) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%dKB", n>>10)
}
