package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fachebot/chat-insight/internal/config"
	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/fachebot/chat-insight/internal/server"
	"github.com/fachebot/chat-insight/internal/svc"
)

var configFile = flag.String("f", "etc/config.yaml", "the config file")

func main() {
	flag.Parse()

	// 读取配置文件
	c, err := config.LoadFromFile(*configFile)
	if err != nil {
		logger.Fatalf("读取配置文件失败, %s", err)
	}

	// 创建服务上下文
	svcCtx := svc.NewServiceContext(c)
	if err := svcCtx.Start(); err != nil {
		logger.Fatalf("启动健康检查失败, %s", err)
	}

	// 启动HTTP服务
	srv := server.NewServer(svcCtx)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatalf("[Server] HTTP 服务异常退出, %s", err)
		}
	}()

	// 等待程序退出
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	// 优雅关闭
	logger.Infof("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("[Server] 关闭失败, %v", err)
	}
	svcCtx.Close()
	logger.Infof("服务已停止")
}
