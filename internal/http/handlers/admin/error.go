package admin

import (
	handlershared "github.com/streamvault/internal/http/handlers/shared"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type mappedHandlerError = handlershared.MappedError

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackKey string) {
	handlershared.RespondMapped(c, err, handlershared.ConcatRules(rules, commonErrorRules), response.CodeInternal, fallbackKey)
}

var commonErrorRules = []mappedHandlerError{
	{Target: service.ErrServiceUnavailable, Code: response.CodeInternal, Key: "error.service_unavailable"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
}

var platformErrorRules = []mappedHandlerError{
	{Target: service.ErrPlatformRequired, Code: response.CodeBadRequest, Key: "error.platform_required"},
	{Target: service.ErrPlatformNotFound, Code: response.CodeNotFound, Key: "error.platform_not_found"},
}

var credentialErrorRules = handlershared.ConcatRules(platformErrorRules, []mappedHandlerError{
	{Target: service.ErrCredentialInvalid, Code: response.CodeBadRequest, Key: "error.credential_invalid"},
	{Target: service.ErrCredentialNotFound, Code: response.CodeNotFound, Key: "error.credential_not_found"},
	{Target: service.ErrCredentialConflict, Code: response.CodeConflict, Key: "error.credential_conflict"},
	{Target: service.ErrUploadEmpty, Code: response.CodeBadRequest, Key: "error.upload_empty"},
})

var keyErrorRules = handlershared.ConcatRules(platformErrorRules, []mappedHandlerError{
	{Target: service.ErrKeyInvalidInput, Code: response.CodeBadRequest, Key: "error.key_invalid_input"},
	{Target: service.ErrKeyNotFound, Code: response.CodeNotFound, Key: "error.key_not_found"},
	{Target: service.ErrKeyGenerateFailed, Code: response.CodeConflict, Key: "error.key_generate_failed"},
	{Target: service.ErrKeyRevokeOption, Code: response.CodeBadRequest, Key: "error.key_revoke_option_invalid"},
	{Target: service.ErrKeySweepScope, Code: response.CodeBadRequest, Key: "error.key_sweep_scope_invalid"},
})

var giveawayErrorRules = handlershared.ConcatRules(platformErrorRules, []mappedHandlerError{
	{Target: service.ErrGiveawayInvalid, Code: response.CodeBadRequest, Key: "error.giveaway_invalid"},
	{Target: service.ErrInvalidDuration, Code: response.CodeBadRequest, Key: "error.duration_invalid"},
	{Target: service.ErrGiveawayNotFound, Code: response.CodeNotFound, Key: "error.giveaway_not_found"},
	{Target: service.ErrGiveawayInactive, Code: response.CodeConflict, Key: "error.giveaway_inactive"},
	{Target: service.ErrGiveawayConflict, Code: response.CodeConflict, Key: "error.giveaway_conflict"},
	{Target: service.ErrNoActiveGiveaway, Code: response.CodeNotFound, Key: "error.giveaway_none_active"},
	{Target: service.ErrKeyGenerateFailed, Code: response.CodeConflict, Key: "error.key_generate_failed"},
})

var banErrorRules = []mappedHandlerError{
	{Target: service.ErrBanIdentifierInvalid, Code: response.CodeBadRequest, Key: "error.ban_identifier_invalid"},
	{Target: service.ErrAlreadyBanned, Code: response.CodeConflict, Key: "error.already_banned"},
	{Target: service.ErrBanNotFound, Code: response.CodeNotFound, Key: "error.ban_not_found"},
}

var adminAccountErrorRules = []mappedHandlerError{
	{Target: service.ErrAdminInvalid, Code: response.CodeBadRequest, Key: "error.admin_invalid"},
	{Target: service.ErrAdminExists, Code: response.CodeConflict, Key: "error.admin_exists"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
	{Target: service.ErrAdminRoleForbidden, Code: response.CodeForbidden, Key: "error.admin_role_forbidden"},
	{Target: service.ErrCannotDeleteOwner, Code: response.CodeForbidden, Key: "error.owner_delete_forbidden"},
	{Target: service.ErrTelegramIDDuplicate, Code: response.CodeConflict, Key: "error.telegram_id_duplicate"},
}
