package service

import (
	"strings"
	"sync"
	"time"

	"github.com/streamvault/internal/config"

	"github.com/mojocn/base64Captcha"
)

const captchaAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 后台登录图片验证码
type CaptchaService struct {
	cfg config.CaptchaConfig

	once  sync.Once
	store base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{cfg: normalizeCaptchaConfig(cfg)}
}

// Enabled 是否要求登录验证码
func (s *CaptchaService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if !s.Enabled() {
		return nil, ErrCaptchaConfigInvalid
	}
	driver := base64Captcha.NewDriverString(
		s.cfg.Height,
		s.cfg.Width,
		s.cfg.NoiseCount,
		s.cfg.ShowLine,
		s.cfg.Length,
		captchaAlphabet,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.imageStore())
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 校验验证码，未启用时直接通过
func (s *CaptchaService) Verify(payload CaptchaVerifyPayload) error {
	if !s.Enabled() {
		return nil
	}
	captchaID := strings.TrimSpace(payload.CaptchaID)
	captchaCode := strings.TrimSpace(payload.CaptchaCode)
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaRequired
	}
	if !s.imageStore().Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) imageStore() base64Captcha.Store {
	s.once.Do(func() {
		s.store = base64Captcha.NewMemoryStore(s.cfg.MaxStore, time.Duration(s.cfg.ExpireSeconds)*time.Second)
	})
	return s.store
}

func normalizeCaptchaConfig(cfg config.CaptchaConfig) config.CaptchaConfig {
	if cfg.Length < 4 || cfg.Length > 8 {
		cfg.Length = 5
	}
	if cfg.Width < 80 {
		cfg.Width = 240
	}
	if cfg.Height < 30 {
		cfg.Height = 80
	}
	if cfg.NoiseCount < 0 {
		cfg.NoiseCount = 0
	}
	if cfg.ShowLine < 0 {
		cfg.ShowLine = 0
	}
	if cfg.ExpireSeconds <= 0 {
		cfg.ExpireSeconds = 300
	}
	if cfg.MaxStore <= 0 {
		cfg.MaxStore = 10240
	}
	return cfg
}
