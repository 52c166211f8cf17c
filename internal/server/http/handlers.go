package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/dmitrijs2005/profilekeeper/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Handler serves the /auth routes and the health check.
type Handler struct {
	accounts *services.AccountService
	chats    *services.ChatProfileService
	store    Pinger
	log      logging.Logger
}

// NewHandler builds a Handler. store backs the health check.
func NewHandler(accounts *services.AccountService, chats *services.ChatProfileService, store Pinger, log logging.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		chats:    chats,
		store:    store,
		log:      log.With("module", "http_handler"),
	}
}

type signupRequest struct {
	Salutation  string `json:"salutation" form:"salutation"`
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth" form:"dateOfBirth"`
	Address     string `json:"address" form:"address"`
	Password    string `json:"password" form:"password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type saveUserDataRequest struct {
	Name          string `json:"name" form:"name"`
	Qualification string `json:"qualification" form:"qualification"`
	Phone         string `json:"phone" form:"phone"`
	DOB           string `json:"dob" form:"dob"`
	About         string `json:"about" form:"about"`
	Skills        string `json:"skills" form:"skills"`
	ProfilePhoto  string `json:"profilePhoto" form:"profilePhoto"`
	Document      string `json:"document" form:"document"`
}

type profileResponse struct {
	Salutation   string      `json:"salutation"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	DateOfBirth  models.Date `json:"dateOfBirth"`
	ProfilePhoto *string     `json:"profilePhoto,omitempty"`
}

// Signup registers an account and returns its first token.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Salutation:  req.Salutation,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		Password:    req.Password,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "token": res.Token})
}

// Login exchanges email and password for a token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

// Profile returns the caller's account without credentials.
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		writeError(c, h.log, common.ErrUnauthorized)
		return
	}

	a, err := h.accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		Salutation:   a.Salutation,
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.PhoneNumber,
		Address:      a.Address,
		DateOfBirth:  a.DateOfBirth,
		ProfilePhoto: a.ProfilePhoto,
	})
}

// UploadPhoto replaces the caller's profile photo with the multipart file
// "profilePhoto".
func (h *Handler) UploadPhoto(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		writeError(c, h.log, common.ErrUnauthorized)
		return
	}

	upload, closeFn, err := formUpload(c, "profilePhoto")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer closeFn()

	ref, err := h.accounts.UpdatePhoto(c.Request.Context(), userID, upload)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile photo updated successfully", "profilePhoto": ref})
}

// SaveUserData upserts a chat profile keyed by phone. A multipart file
// "document" is stored and referenced from the profile.
func (h *Handler) SaveUserData(c *gin.Context) {
	var req saveUserDataRequest
	if !h.bind(c, &req) {
		return
	}

	upload, closeFn, err := formUpload(c, "document")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer closeFn()

	profile, err := h.chats.Save(c.Request.Context(), services.SaveChatProfileInput{
		Name:          req.Name,
		Qualification: req.Qualification,
		Phone:         req.Phone,
		DOB:           req.DOB,
		About:         req.About,
		Skills:        req.Skills,
		ProfilePhoto:  req.ProfilePhoto,
		DocumentRef:   req.Document,
		Document:      upload,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User data saved successfully", "chatUser": profile})
}

// Health reports whether the store answers a ping.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn(c.Request.Context(), "store ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bind decodes a JSON or form body. An empty body binds to the zero value so
// the service reports the missing fields. Form bodies map only their values;
// multipart file parts are read separately by formUpload.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(dst)
	} else {
		err = c.ShouldBindWith(dst, binding.Form)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(c, h.log, err)
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
	return false
}

// formUpload opens the multipart file under field. A missing file, or a
// request that is not multipart, yields a nil upload.
func formUpload(c *gin.Context, field string) (*storage.Upload, func(), error) {
	nop := func() {}
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nop, nil
	}

	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nop, nil
	}
	if err != nil {
		return nil, nop, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nop, err
	}

	return &storage.Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
