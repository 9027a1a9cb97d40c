package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"goout/internal/storage"
)

// ServeMedia godoc
// @Summary Raw bytes of a stored image
// @Tags media
// @Produce image/jpeg,image/png,image/webp
// @Param path path string true "Key below /uploads/"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /uploads/{path} [get]
func ServeMedia(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		if key == "" {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "image not found")
		}

		rc, info, err := store.Get(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "image not found")
			}
			return err
		}

		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, strconv.Quote(info.ETag))
		}

		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, size)
	}
}
