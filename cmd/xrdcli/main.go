// xrdcli 是基于 xrdkafka 的 Kafka 集群巡检命令行工具。
//
// 用法:
//
//	xrdcli [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-b, --brokers  bootstrap servers（与 --config 二选一）
//	-c, --config   客户端配置档案文件 (.yaml/.yml/.json)
//	-p, --profile  档案名 (默认: default)
//	-t, --timeout  查询超时时间 (默认: 30s)
//	-v, --verbose  输出引擎调试日志
//
// 命令:
//
//	metadata [topic]               查看集群/主题元数据
//	watermarks <topic> <partition> 查询分区水位
//	groups [group]                 列出消费组
//	produce <topic>                发送一条消息并等待投递回报
//	consume <topic>                消费并打印消息
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败
//	2: 参数错误（缺少必需参数、未知命令等）
//
// 示例:
//
//	xrdcli -b kafka-1:9092 metadata orders
//	xrdcli -b kafka-1:9092 watermarks orders 0
//	xrdcli -c kafka.yaml -p probe groups
//	xrdcli -b kafka-1:9092 produce orders --key k1 --payload '{"n":1}'
//	xrdcli -b kafka-1:9092 consume orders --group probe --count 10
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认查询超时时间。
const defaultTimeout = 30 * time.Second

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xrdcli",
		Usage:   "Kafka 集群巡检工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "brokers",
				Aliases: []string{"b"},
				Usage:   "bootstrap servers（逗号分隔）",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "客户端配置档案文件路径",
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "配置档案名",
				Value:   "default",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "查询超时时间",
				Value:   defaultTimeout,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "输出引擎调试日志",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"XKit Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			// flag 解析器已向 stderr 输出错误详情，此处仅设置退出码
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}

// isCLIUsageError 判断是否为 CLI 框架产生的参数错误。
func isCLIUsageError(err error) bool {
	if _, ok := err.(cli.ExitCoder); ok {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "flag provided but not defined") ||
		strings.Contains(msg, "No help topic for") ||
		strings.Contains(msg, "flag needs an argument")
}
