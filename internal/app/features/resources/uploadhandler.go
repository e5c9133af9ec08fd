package resources

import (
	"context"
	"net/http"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"github.com/reservehub/reservehub/internal/domain/models"
	"go.uber.org/zap"
)

// maxImageUpload caps resource image uploads at 8MB.
const maxImageUpload = 8 << 20

// HandleUploadImage handles POST /resources/{id}/image with a multipart
// form carrying the image under the "image" field. A previous image for
// the resource is deleted after the new one is stored.
func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		uierrors.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil || header == nil || header.Size == 0 {
		uierrors.BadRequest(w, "missing image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !isAllowedImageType(contentType) {
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "unsupported image type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	info, err := uploadImage(ctx, h.Storage, header.Filename, file, header.Size, contentType)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to store image")
		return
	}

	prev := res.ImagePath
	if err := h.Resources.Update(ctx, res.ID, models.Resource{
		Name:             res.Name,
		Location:         res.Location,
		Description:      res.Description,
		ApprovalRequired: res.ApprovalRequired,
		ImagePath:        info.Path,
		ImageName:        info.FileName,
	}); err != nil {
		if delErr := h.Storage.Delete(ctx, info.Path); delErr != nil {
			h.Log.Warn("failed to clean up orphaned image", zap.String("path", info.Path), zap.Error(delErr))
		}
		h.ErrLog.ServerError(w, r, err, "failed to save image reference")
		return
	}

	if prev != "" && prev != info.Path {
		if err := h.Storage.Delete(ctx, prev); err != nil {
			h.Log.Warn("failed to delete replaced image", zap.String("path", prev), zap.Error(err))
		}
	}

	h.Log.Info("resource image uploaded",
		zap.String("resource_id", res.ID.Hex()),
		zap.String("path", info.Path),
		zap.Int64("size", info.Size))
	uierrors.JSON(w, http.StatusOK, uploadResponse{
		Path:        info.Path,
		FileName:    info.FileName,
		Size:        info.Size,
		ContentType: info.ContentType,
	})
}

func isAllowedImageType(ct string) bool {
	switch ct {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
