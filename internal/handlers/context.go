package handlers

import (
	"mime/multipart"

	"github.com/labstack/echo/v4"
	"github.com/ripplr-app/backend/internal/models"
	"github.com/ripplr-app/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID extracts the authenticated user's ID from the JWT claims set
// by the auth middleware. The hex claim is normalized to an ObjectID here so
// nothing past this point carries a string-shaped user reference.
func currentUserID(c echo.Context) (primitive.ObjectID, bool) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// saveUpload stores a multipart attachment and returns its serving URI
func saveUpload(files storage.FileStore, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return files.Save(fh.Filename, src)
}

// resolveImage normalizes the two accepted image shapes (direct URI field,
// multipart attachment) to a single stored URI. An attachment wins over a
// URI when both are present.
func resolveImage(c echo.Context, files storage.FileStore, uri string) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// no attachment in the request
		return uri, nil
	}
	return saveUpload(files, fh)
}

// excerpt returns the first n runes of s
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
