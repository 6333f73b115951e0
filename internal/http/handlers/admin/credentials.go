package admin

import (
	"io"
	"strings"

	handlershared "github.com/streamvault/internal/http/handlers/shared"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
)

const maxCredentialUploadBytes = 4 << 20

// ListCredentials 凭据列表（按平台、状态过滤）
func (h *Handler) ListCredentials(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.CredentialService.List(service.CredentialListInput{
		Platform: c.Query("platform"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondWithMappedError(c, err, platformErrorRules, "error.credential_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// CredentialRequest 凭据新增/编辑请求
type CredentialRequest struct {
	Platform string `json:"platform"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Status   string `json:"status"`
}

func (r CredentialRequest) toServiceInput() service.CredentialInput {
	return service.CredentialInput{
		Platform: strings.TrimSpace(r.Platform),
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
		Status:   strings.TrimSpace(r.Status),
	}
}

// CreateCredential 新增单个凭据
func (h *Handler) CreateCredential(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	credential, err := h.CredentialService.Add(req.toServiceInput())
	if err != nil {
		respondWithMappedError(c, err, credentialErrorRules, "error.save_failed")
		return
	}
	response.Success(c, credential)
}

// UploadCredentialsRequest 文本方式批量导入
type UploadCredentialsRequest struct {
	Platform string `json:"platform" form:"platform"`
	Content  string `json:"content" form:"content"`
}

// UploadCredentials 批量导入凭据，支持 multipart 文件（字段 file）或 JSON 文本
func (h *Handler) UploadCredentials(c *gin.Context) {
	var req UploadCredentialsRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req.Platform = c.PostForm("platform")
		req.Content = c.PostForm("content")
		if fileHeader, err := c.FormFile("file"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				respondError(c, response.CodeBadRequest, "error.upload_read_failed", err)
				return
			}
			defer file.Close()
			raw, err := io.ReadAll(io.LimitReader(file, maxCredentialUploadBytes))
			if err != nil {
				respondError(c, response.CodeBadRequest, "error.upload_read_failed", err)
				return
			}
			req.Content = string(raw)
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	report, err := h.CredentialService.BulkUpload(strings.TrimSpace(req.Platform), req.Content)
	if err != nil {
		respondWithMappedError(c, err, credentialErrorRules, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_credentials_uploaded",
		"operator", operatorName(c),
		"platform", req.Platform,
		"added", report.Added,
		"skipped", report.Skipped,
	)
	response.Success(c, report)
}

// UpdateCredential 编辑凭据（空字段保持不变）
func (h *Handler) UpdateCredential(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	credential, err := h.CredentialService.Update(id, req.toServiceInput())
	if err != nil {
		respondWithMappedError(c, err, credentialErrorRules, "error.save_failed")
		return
	}
	response.Success(c, credential)
}

// DeleteCredential 删除凭据
func (h *Handler) DeleteCredential(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.CredentialService.Delete(id); err != nil {
		respondWithMappedError(c, err, credentialErrorRules, "error.delete_failed")
		return
	}
	response.Success(c, gin.H{"id": id})
}

// PurgeCredentialsRequest 按平台批量删除请求，status 为空时清空该平台
type PurgeCredentialsRequest struct {
	Platform string `json:"platform" binding:"required"`
	Status   string `json:"status"`
}

// PurgeCredentials 按平台批量删除凭据
func (h *Handler) PurgeCredentials(c *gin.Context) {
	var req PurgeCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	removed, err := h.CredentialService.DeleteByPlatform(req.Platform, req.Status)
	if err != nil {
		respondWithMappedError(c, err, credentialErrorRules, "error.delete_failed")
		return
	}
	requestLog(c).Infow("admin_credentials_purged",
		"operator", operatorName(c),
		"platform", req.Platform,
		"status", req.Status,
		"removed", removed,
	)
	response.Success(c, gin.H{"removed": removed})
}

// ListCredentialClaims 凭据领取历史
func (h *Handler) ListCredentialClaims(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	claimedBy, ok := parseInt64Query(c, "user_id")
	if !ok {
		return
	}
	from, ok := parseTimeQuery(c, "from", false)
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to", true)
	if !ok {
		return
	}
	items, total, err := h.CredentialService.ListClaims(service.CredentialClaimListInput{
		Platform:  c.Query("platform"),
		ClaimedBy: claimedBy,
		From:      from,
		To:        to,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondWithMappedError(c, err, platformErrorRules, "error.credential_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}
