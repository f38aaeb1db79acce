package service

import (
	"Applyhub/internal/api/dto"
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/keylock"
	"Applyhub/internal/pkg/metrics"
	"Applyhub/internal/pkg/redis"
	"Applyhub/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"time"
)

const rollbackTimeout = 3 * time.Second

type TogglePhase string

const (
	PhaseProvisional TogglePhase = "provisional"
	PhaseConfirmed   TogglePhase = "confirmed"
	PhaseRolledBack  TogglePhase = "rolled_back"
)

// ToggleState 推给监听方的状态，Provisional 之后一定跟一个 Confirmed 或 RolledBack
type ToggleState struct {
	Ref    model.ContentRef
	Kind   model.InteractionKind
	Active bool
	Phase  TogglePhase
}

type ToggleListener func(ToggleState)

type toggleOptions struct {
	listener ToggleListener
}

type ToggleOption func(*toggleOptions)

// WithToggleListener 订阅乐观状态及其最终结果
func WithToggleListener(l ToggleListener) ToggleOption {
	return func(o *toggleOptions) {
		o.listener = l
	}
}

// ToggleResult 切换后的最终状态，失败时为回滚后的状态
type ToggleResult struct {
	Ref    model.ContentRef
	Kind   model.InteractionKind
	Active bool
}

type InteractionService interface {
	Toggle(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind, opts ...ToggleOption) (*ToggleResult, error)
	GetState(ctx context.Context, userID uint64, ref model.ContentRef) (*dto.InteractionStateDTO, error)
	ListBookmarks(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.BookmarkDTO, error)
}

type interactionServiceImpl struct {
	interactionRepo repository.InteractionRepo
	contentRepo     repository.ContentRepo
	locker          keylock.Locker
	invalidator     AnalyticsInvalidator
	now             func() time.Time
}

func NewInteractionService(
	interactionRepo repository.InteractionRepo,
	contentRepo repository.ContentRepo,
	locker keylock.Locker,
	invalidator AnalyticsInvalidator,
) InteractionService {
	return &interactionServiceImpl{
		interactionRepo: interactionRepo,
		contentRepo:     contentRepo,
		locker:          locker,
		invalidator:     invalidator,
		now:             time.Now,
	}
}

func toggleLockKey(userID uint64, ref model.ContentRef, kind model.InteractionKind) string {
	return strconv.FormatUint(userID, 10) + ":" + ref.String() + ":" + string(kind)
}

// Toggle 乐观切换：读当前状态 -> 推送临时状态 -> 落库 -> 确认或回滚。
// 同一 (user, content, kind) 串行执行。
func (s *interactionServiceImpl) Toggle(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind, opts ...ToggleOption) (*ToggleResult, error) {
	if userID == 0 || !ref.Type.Valid() || ref.ID == 0 || !kind.Valid() {
		return nil, ErrParamInvalid
	}
	o := &toggleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	content, err := s.contentRepo.GetContentByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if content == nil {
		return nil, ErrContentNotFound
	}

	unlock, err := s.locker.Lock(ctx, toggleLockKey(userID, ref, kind))
	if err != nil {
		metrics.RecordToggle(string(kind), "lock_failed")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrToggleFailed, err)
	}
	defer unlock()

	before, err := s.interactionRepo.CheckInteractionExists(ctx, userID, ref, kind)
	if err != nil {
		metrics.RecordToggle(string(kind), "read_failed")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	after := !before
	o.emit(ToggleState{Ref: ref, Kind: kind, Active: after, Phase: PhaseProvisional})

	if err = s.persist(ctx, userID, ref, kind, after); err != nil {
		restored := s.rollback(ctx, userID, ref, kind, before)
		o.emit(ToggleState{Ref: ref, Kind: kind, Active: restored, Phase: PhaseRolledBack})
		metrics.RecordToggle(string(kind), "rolled_back")
		log.WarnContext(ctx, "interaction toggle rolled back",
			"user_id", userID,
			"content", ref.String(),
			"kind", kind,
			"err", err,
		)
		return &ToggleResult{Ref: ref, Kind: kind, Active: restored}, fmt.Errorf("%w: %w", ErrToggleFailed, err)
	}

	o.emit(ToggleState{Ref: ref, Kind: kind, Active: after, Phase: PhaseConfirmed})
	metrics.RecordToggle(string(kind), "ok")

	// 计数由定时任务按脏集合重算
	if err = redis.SAdd(ctx, consts.ContentDirtyKey, ref.String()); err != nil && !errors.Is(err, redis.ErrNotInitialized) {
		log.WarnContext(ctx, "mark content dirty failed", "content", ref.String(), "err", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateAnalytics(ctx, content.UserID)
	}

	return &ToggleResult{Ref: ref, Kind: kind, Active: after}, nil
}

// persist 插入或删除一行。重复插入、删除不存在的行都视为目标状态已达成
func (s *interactionServiceImpl) persist(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind, active bool) error {
	if active {
		err := s.interactionRepo.CreateInteraction(ctx, &model.Interaction{
			UserID:      userID,
			ContentType: ref.Type,
			ContentID:   ref.ID,
			Kind:        kind,
			CreatedAt:   s.now(),
		})
		if err != nil && !repository.IsDuplicateError(err) {
			return err
		}
		return nil
	}
	_, err := s.interactionRepo.DeleteInteraction(ctx, userID, ref, kind)
	return err
}

// rollback 确认存储中的实际状态，与切换前不一致时反向写回。
// 请求可能已取消，这里使用独立的超时上下文；返回回滚后的实际状态。
func (s *interactionServiceImpl) rollback(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind, before bool) bool {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	actual, err := s.interactionRepo.CheckInteractionExists(rctx, userID, ref, kind)
	if err != nil {
		log.ErrorContext(rctx, "toggle rollback read failed", "content", ref.String(), "err", err)
		return before
	}
	if actual == before {
		return before
	}
	if err = s.persist(rctx, userID, ref, kind, before); err != nil {
		log.ErrorContext(rctx, "toggle rollback write failed", "content", ref.String(), "err", err)
		return actual
	}
	return before
}

func (o *toggleOptions) emit(state ToggleState) {
	if o.listener != nil {
		o.listener(state)
	}
}

func (s *interactionServiceImpl) GetState(ctx context.Context, userID uint64, ref model.ContentRef) (*dto.InteractionStateDTO, error) {
	if !ref.Type.Valid() || ref.ID == 0 {
		return nil, ErrParamInvalid
	}
	kinds, err := s.interactionRepo.GetInteractionKinds(ctx, userID, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	res := &dto.InteractionStateDTO{}
	for _, k := range kinds {
		switch k {
		case model.KindLike:
			res.Liked = true
		case model.KindBookmark:
			res.Bookmarked = true
		}
	}
	return res, nil
}

// ListBookmarks 收藏列表，内容已被删除的条目保留但标题为空
func (s *interactionServiceImpl) ListBookmarks(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.BookmarkDTO, error) {
	list, err := s.interactionRepo.ListUserInteractions(ctx, userID, model.KindBookmark, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(list) == 0 {
		return []*dto.BookmarkDTO{}, nil
	}

	refs := make([]model.ContentRef, 0, len(list))
	for _, it := range list {
		refs = append(refs, it.Ref())
	}
	contents, err := s.contentRepo.GetContentsByRefs(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	contentMap := make(map[model.ContentRef]*model.Content, len(contents))
	for _, c := range contents {
		contentMap[c.Ref()] = c
	}

	res := make([]*dto.BookmarkDTO, 0, len(list))
	for _, it := range list {
		d := &dto.BookmarkDTO{
			ContentType:  string(it.ContentType),
			ContentID:    it.ContentID,
			BookmarkedAt: it.CreatedAt,
		}
		if c, ok := contentMap[it.Ref()]; ok {
			d.Title = c.Title
			d.OwnerID = c.UserID
		}
		res = append(res, d)
	}
	return res, nil
}
