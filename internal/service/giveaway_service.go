package service

import (
	"context"
	crand "crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"

	"gorm.io/gorm"
)

// 抽奖关闭原因
const (
	GiveawayCloseCancelled = "cancelled"
	GiveawayCloseDrawn     = "drawn"
	GiveawayCloseEmpty     = "empty"
)

const (
	giveawayMaxWinners      = 100
	giveawayMaxDuration     = 30 * 24 * time.Hour
	giveawayDeliveryTimeout = 15 * time.Second
)

// GiveawayService 抽奖调度服务
type GiveawayService struct {
	repo      repository.GiveawayRepository
	platforms *PlatformService
	keys      *KeyService
	notifier  Notifier
	now       func() time.Time
	timeout   time.Duration
}

// StartGiveawayInput 发起抽奖输入
type StartGiveawayInput struct {
	Platform string
	Duration string
	Winners  int
}

// GiveawayParticipantInput 参与者信息
type GiveawayParticipantInput struct {
	UserID   int64
	Username string
}

// WinnerDelivery 单个获奖者的奖品与投递结果
type WinnerDelivery struct {
	UserID    int64  `json:"user_id"`
	KeyCode   string `json:"key_code"`
	Delivered bool   `json:"delivered"`
}

// GiveawayOutcome 单场抽奖的开奖结果
type GiveawayOutcome struct {
	GiveawayID   uint             `json:"giveaway_id"`
	Platform     string           `json:"platform"`
	Participants int              `json:"participants"`
	Reason       string           `json:"reason"`
	Winners      []WinnerDelivery `json:"winners"`
}

// GiveawayStatus 进行中抽奖的状态
type GiveawayStatus struct {
	Giveaway     *models.Giveaway `json:"giveaway"`
	Participants int64            `json:"participants"`
	Remaining    time.Duration    `json:"remaining"`
}

// NewGiveawayService 创建抽奖服务
func NewGiveawayService(repo repository.GiveawayRepository, platforms *PlatformService, keys *KeyService, notifier Notifier) *GiveawayService {
	return &GiveawayService{
		repo:      repo,
		platforms: platforms,
		keys:      keys,
		notifier:  notifier,
		now:       time.Now,
		timeout:   giveawayDeliveryTimeout,
	}
}

// ParseDuration 解析 Ns / Nm / Nh / Nd 或纯秒数
func ParseDuration(raw string) (time.Duration, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return 0, ErrInvalidDuration
	}
	unit := time.Second
	switch value[len(value)-1] {
	case 's':
		value = value[:len(value)-1]
	case 'm':
		unit = time.Minute
		value = value[:len(value)-1]
	case 'h':
		unit = time.Hour
		value = value[:len(value)-1]
	case 'd':
		unit = 24 * time.Hour
		value = value[:len(value)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidDuration
	}
	if n > int64(giveawayMaxDuration/unit) {
		return 0, ErrInvalidDuration
	}
	return time.Duration(n) * unit, nil
}

// Start 发起抽奖：关闭已有的进行中抽奖（走取消路径）后创建新抽奖
func (s *GiveawayService) Start(input StartGiveawayInput) (*models.Giveaway, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	platform, err := s.platforms.Resolve(input.Platform)
	if err != nil {
		return nil, err
	}
	duration, err := ParseDuration(input.Duration)
	if err != nil {
		return nil, err
	}
	if input.Winners <= 0 || input.Winners > giveawayMaxWinners {
		return nil, ErrGiveawayInvalid
	}

	now := s.now()
	giveaway := &models.Giveaway{
		PlatformID:      platform.ID,
		Active:          true,
		Duration:        strings.ToLower(strings.TrimSpace(input.Duration)),
		DurationSeconds: int64(duration / time.Second),
		Winners:         input.Winners,
		EndTime:         now.Add(duration),
		CreatedAt:       now,
	}
	var (
		previous     *models.Giveaway
		participants []int64
	)
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		active, err := repo.GetActiveForUpdate()
		if err != nil {
			return err
		}
		if active != nil {
			affected, err := repo.Close(active.ID, GiveawayCloseCancelled, now)
			if err != nil {
				return err
			}
			if affected > 0 {
				previous = active
				participants, err = participantIDs(repo, active.ID)
				if err != nil {
					return err
				}
			}
		}
		if err := repo.Create(giveaway); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrGiveawayConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	giveaway.Platform = platform

	if previous != nil {
		logger.Infow("giveaway_replaced",
			"previous_id", previous.ID,
			"participants", len(participants),
		)
		s.notifyCancelled(previous, participants)
	}
	logger.Infow("giveaway_started",
		"giveaway_id", giveaway.ID,
		"platform", platform.Name,
		"winners", giveaway.Winners,
		"end_time", giveaway.EndTime,
	)
	return giveaway, nil
}

// Active 当前进行中的抽奖，无则返回 ErrNoActiveGiveaway
func (s *GiveawayService) Active() (*GiveawayStatus, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	giveaway, err := s.repo.GetActive()
	if err != nil {
		return nil, err
	}
	if giveaway == nil {
		return nil, ErrNoActiveGiveaway
	}
	count, err := s.repo.CountParticipants(giveaway.ID)
	if err != nil {
		return nil, err
	}
	remaining := giveaway.EndTime.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return &GiveawayStatus{Giveaway: giveaway, Participants: count, Remaining: remaining}, nil
}

// Join 幂等加入抽奖，重复加入返回 ErrAlreadyParticipated
func (s *GiveawayService) Join(giveawayID uint, user GiveawayParticipantInput) (*models.Giveaway, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	if user.UserID <= 0 {
		return nil, ErrRedeemUserRequired
	}
	giveaway, err := s.repo.GetByID(giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway == nil {
		return nil, ErrGiveawayNotFound
	}
	if !giveaway.Active || !s.now().Before(giveaway.EndTime) {
		return nil, ErrGiveawayInactive
	}
	added, err := s.repo.AddParticipant(&models.GiveawayParticipant{
		GiveawayID: giveaway.ID,
		UserID:     user.UserID,
		Username:   strings.TrimPrefix(strings.TrimSpace(user.Username), "@"),
		JoinedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !added {
		return giveaway, ErrAlreadyParticipated
	}
	logger.Infow("giveaway_joined", "giveaway_id", giveaway.ID, "user_id", user.UserID)
	return giveaway, nil
}

// JoinActive 加入当前进行中的抽奖
func (s *GiveawayService) JoinActive(user GiveawayParticipantInput) (*models.Giveaway, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	giveaway, err := s.repo.GetActive()
	if err != nil {
		return nil, err
	}
	if giveaway == nil {
		return nil, ErrNoActiveGiveaway
	}
	return s.Join(giveaway.ID, user)
}

// Stop 管理员取消抽奖并通知参与者
func (s *GiveawayService) Stop(giveawayID uint) (*models.Giveaway, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	var (
		giveaway     *models.Giveaway
		participants []int64
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByID(giveawayID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrGiveawayNotFound
		}
		affected, err := repo.Close(current.ID, GiveawayCloseCancelled, s.now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrGiveawayInactive
		}
		participants, err = participantIDs(repo, current.ID)
		if err != nil {
			return err
		}
		current.Active = false
		current.CloseReason = GiveawayCloseCancelled
		giveaway = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("giveaway_stopped", "giveaway_id", giveaway.ID, "participants", len(participants))
	s.notifyCancelled(giveaway, participants)
	return giveaway, nil
}

// StopActive 取消当前进行中的抽奖
func (s *GiveawayService) StopActive() (*models.Giveaway, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	giveaway, err := s.repo.GetActive()
	if err != nil {
		return nil, err
	}
	if giveaway == nil {
		return nil, ErrNoActiveGiveaway
	}
	return s.Stop(giveaway.ID)
}

// Sweep 处理全部到期抽奖，单场失败不影响其余场次
func (s *GiveawayService) Sweep(ctx context.Context) ([]GiveawayOutcome, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	due, err := s.repo.ListDue(s.now())
	if err != nil {
		return nil, err
	}
	outcomes := make([]GiveawayOutcome, 0, len(due))
	for i := range due {
		outcome, err := s.process(ctx, &due[i])
		if err != nil {
			logger.Errorw("giveaway_sweep_failed", "giveaway_id", due[i].ID, "error", err)
			continue
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}
	return outcomes, nil
}

// process 关闭、抽取获奖者、生成奖品在同一事务内完成，投递在提交之后
func (s *GiveawayService) process(ctx context.Context, giveaway *models.Giveaway) (*GiveawayOutcome, error) {
	platform := giveaway.Platform
	if platform == nil {
		resolved, err := s.platforms.Get(giveaway.PlatformID)
		if err != nil {
			return nil, err
		}
		platform = resolved
	}
	outcome := &GiveawayOutcome{GiveawayID: giveaway.ID, Platform: platform.Name}
	prizes := make([]*models.Key, 0)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		participants, err := participantIDs(repo, giveaway.ID)
		if err != nil {
			return err
		}
		outcome.Participants = len(participants)
		reason := GiveawayCloseDrawn
		if len(participants) == 0 {
			reason = GiveawayCloseEmpty
		}
		affected, err := repo.Close(giveaway.ID, reason, s.now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return errGiveawayAlreadyClosed
		}
		outcome.Reason = reason
		if len(participants) == 0 {
			return nil
		}
		winners, err := drawWinners(participants, giveaway.Winners)
		if err != nil {
			return err
		}
		for _, winner := range winners {
			key, err := s.keys.GeneratePrize(tx, platform, winner)
			if err != nil {
				return err
			}
			prizes = append(prizes, key)
			outcome.Winners = append(outcome.Winners, WinnerDelivery{UserID: winner, KeyCode: key.KeyCode})
		}
		return nil
	})
	if errors.Is(err, errGiveawayAlreadyClosed) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for i, key := range prizes {
		outcome.Winners[i].Delivered = s.deliverPrize(ctx, outcome.Winners[i].UserID, platform.Name, key)
	}
	logger.Infow("giveaway_drawn",
		"giveaway_id", giveaway.ID,
		"platform", platform.Name,
		"reason", outcome.Reason,
		"participants", outcome.Participants,
		"winners", len(outcome.Winners),
	)
	return outcome, nil
}

var errGiveawayAlreadyClosed = errors.New("giveaway already closed")

func (s *GiveawayService) deliverPrize(parent context.Context, winner int64, platform string, key *models.Key) bool {
	if s.notifier == nil {
		return false
	}
	if parent == nil {
		parent = context.Background()
	}
	// 每个获奖者独立计时，不受整轮扫描剩余时间影响
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	defer cancel()
	if err := s.notifier.GiveawayWinner(ctx, winner, platform, key); err != nil {
		logger.Warnw("giveaway_winner_delivery_failed", "user_id", winner, "key_code", key.KeyCode, "error", err)
		return false
	}
	return true
}

func (s *GiveawayService) notifyCancelled(giveaway *models.Giveaway, participants []int64) {
	if s.notifier == nil || giveaway == nil || len(participants) == 0 {
		return
	}
	name := ""
	if giveaway.Platform != nil {
		name = giveaway.Platform.Name
	} else if platform, err := s.platforms.Get(giveaway.PlatformID); err == nil {
		name = platform.Name
	}
	s.notifier.GiveawayCancelled(name, participants)
}

func participantIDs(repo repository.GiveawayRepository, giveawayID uint) ([]int64, error) {
	rows, err := repo.ListParticipants(giveawayID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	return ids, nil
}

// drawWinners 使用加密随机源做部分 Fisher-Yates 洗牌，无放回抽取 min(count, len) 个
func drawWinners(participants []int64, count int) ([]int64, error) {
	pool := append([]int64(nil), participants...)
	if count > len(pool) {
		count = len(pool)
	}
	for i := 0; i < count; i++ {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(pool)-i)))
		if err != nil {
			return nil, err
		}
		j := i + int(n.Int64())
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count], nil
}
