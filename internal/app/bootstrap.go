package app

import (
	"errors"
	"fmt"

	"github.com/megano/internal/authz"
	"github.com/megano/internal/config"
	"github.com/megano/internal/models"
	"github.com/megano/internal/provider"
	"github.com/megano/internal/router"
	"github.com/megano/internal/worker"
)

// PrepareDatabase 连接数据库并迁移表结构
func PrepareDatabase(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode == "debug"); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// ensureDefaultStaff 初始化默认员工账号并授予 staff 角色
func ensureDefaultStaff(cfg *config.Config, container *provider.Container) error {
	user, err := models.InitDefaultStaff(cfg.Bootstrap.StaffEmail, cfg.Bootstrap.StaffPassword)
	if err != nil {
		return err
	}
	isStaff, err := container.AuthzService.IsStaff(user.ID)
	if err != nil {
		return err
	}
	if isStaff {
		return nil
	}
	return container.AuthzService.GrantRole(user.ID, authz.RoleStaff)
}

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode Mode) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	if err := ensureDefaultStaff(cfg, container); err != nil {
		return nil, fmt.Errorf("bootstrap staff: %w", err)
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode.servesHTTP() {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}

	// 初始化 Worker 服务；队列未启用时退化为本地扫描
	if mode.runsWorker() {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Addr()
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
