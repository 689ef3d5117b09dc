package database

import (
	"log"
	"sync"
)

// Status 负责线程安全地管理和提供Redis的健康状态。
// 健康检查器写入，依赖Redis的模块读取。
type Status struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

// NewStatus 创建状态管理器，默认启动时是健康的
func NewStatus() *Status {
	return &Status{isRedisHealthy: true}
}

// IsRedisHealthy 返回当前Redis的健康状态。nil 接收者视为健康。
func (s *Status) IsRedisHealthy() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRedisHealthy
}

// UpdateStatus 用于线程安全地更新健康状态，只在状态变化时打印日志
func (s *Status) UpdateStatus(isHealthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRedisHealthy == isHealthy {
		return
	}
	s.isRedisHealthy = isHealthy
	if isHealthy {
		log.Println("健康检查: Redis服务状态已更新为 [可用]")
	} else {
		log.Println("健康检查警告: Redis服务状态已更新为 [不可用]")
	}
}
