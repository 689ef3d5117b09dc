package widget

import (
	"context"
	"errors"
	"log"
	"sync"
)

// SessionViewIncremented 在本次会话已经上报过浏览后设置，目前只做记录
const SessionViewIncremented = "view_incremented"

// API 是组件依赖的计数接口，*Client 实现了它
type API interface {
	FetchStats(ctx context.Context) (Stats, error)
	IncrementViews(ctx context.Context) (int64, error)
	IncrementLoves(ctx context.Context) (int64, error)
}

// State 是组件当前展示的内容
type State struct {
	Views   int64 `json:"views"`
	Loves   int64 `json:"loves"`
	Loved   bool  `json:"loved"`
	Loading bool  `json:"loading"`
}

// Widget 是计数展示组件的状态机：挂载时计一次浏览，每个访客最多喜欢一次。
// 展示的数字可能和服务端不一致，直到下一次 Refresh。
type Widget struct {
	api     API
	flags   FlagStore
	session *SessionFlags

	mu    sync.Mutex
	state State
}

func New(api API, flags FlagStore, session *SessionFlags) *Widget {
	if session == nil {
		session = NewSessionFlags()
	}
	return &Widget{
		api:     api,
		flags:   flags,
		session: session,
		state:   State{Loading: true},
	}
}

// Refresh 读取服务端计数和本地喜欢标记，不产生任何写操作。
// 读取失败时展示0，和服务不可用时的页面一致。
func (w *Widget) Refresh(ctx context.Context) error {
	var errs []error

	s, err := w.api.FetchStats(ctx)
	if err != nil {
		log.Printf("获取计数失败: %v", err)
		errs = append(errs, err)
	}
	liked, err := w.flags.HasLiked()
	if err != nil {
		log.Printf("读取喜欢标记失败: %v", err)
		errs = append(errs, err)
	}

	w.mu.Lock()
	w.state.Views = s.SiteViews
	w.state.Loves = s.LoveCount
	w.state.Loved = liked
	w.state.Loading = false
	w.mu.Unlock()

	return errors.Join(errs...)
}

// Mount 对应一次页面加载：刷新计数，然后无条件计一次浏览并展示返回的新值
func (w *Widget) Mount(ctx context.Context) error {
	errs := []error{w.Refresh(ctx)}

	n, err := w.api.IncrementViews(ctx)
	if err != nil {
		log.Printf("上报浏览失败: %v", err)
		errs = append(errs, err)
	} else if n > 0 {
		w.mu.Lock()
		w.state.Views = n
		w.mu.Unlock()
		w.session.Set(SessionViewIncremented)
	}
	return errors.Join(errs...)
}

// Love 处理一次“喜欢”点击，返回是否真的发出了请求。
// 已有标记时什么都不做；否则先乐观地 +1 并写入标记，再调用接口，接口失败也不回滚。
func (w *Widget) Love(ctx context.Context) (bool, error) {
	w.mu.Lock()
	liked, err := w.flags.HasLiked()
	if err != nil {
		w.mu.Unlock()
		return false, err
	}
	if liked || w.state.Loved {
		w.state.Loved = true
		w.mu.Unlock()
		return false, nil
	}

	w.state.Loved = true
	w.state.Loves++
	flagErr := w.flags.SetLiked()
	w.mu.Unlock()

	if flagErr != nil {
		log.Printf("保存喜欢标记失败: %v", flagErr)
	}
	if _, err := w.api.IncrementLoves(ctx); err != nil {
		log.Printf("同步喜欢数失败: %v", err)
		return true, errors.Join(flagErr, err)
	}
	return true, flagErr
}

// Snapshot 返回当前展示的状态
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ViewReported 报告本次会话是否已经上报过浏览
func (w *Widget) ViewReported() bool {
	return w.session.Has(SessionViewIncremented)
}
