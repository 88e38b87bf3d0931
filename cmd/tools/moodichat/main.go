package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/moodi/backend/internal/client"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	server := flag.String("server", envOrDefault("MOODI_SERVER", "http://localhost:3000"), "MOODi 服务地址")
	playerCmd := flag.String("player", os.Getenv("MOODI_PLAYER"), "播放 mp3 的外部命令，例如 mpg123 或 afplay")
	timeout := flag.Duration("timeout", 60*time.Second, "单次请求超时时间")
	width := flag.Float64("width", 1280, "模拟的视口宽度（像素），<=768 时使用窄屏布局")
	height := flag.Float64("height", 800, "模拟的视口高度（像素）")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var player client.Player
	if strings.TrimSpace(*playerCmd) != "" {
		player = newExecPlayer(*playerCmd)
	}

	renderer := newTerminalRenderer(os.Stdout)
	session := client.NewSession(
		client.NewHTTPAPI(*server, *timeout),
		renderer,
		player,
		client.WithViewport(client.Viewport{Width: *width, Height: *height}),
	)

	cyan := color.New(color.FgCyan)
	cyan.Printf("MOODi @ %s\n", *server)
	fmt.Println("Commands: /play  /new  /quit")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		renderer.Prompt()
		select {
		case <-ctx.Done():
			session.Reset()
			return
		case line, ok := <-lines:
			if !ok {
				session.Reset()
				return
			}
			if handleLine(ctx, session, line) {
				session.Reset()
				return
			}
		}
	}
}

// handleLine 处理一行输入，返回 true 表示退出
func handleLine(ctx context.Context, session *client.Session, line string) bool {
	switch strings.TrimSpace(line) {
	case "/quit", "/exit":
		return true
	case "/new":
		if err := session.Reset(); err != nil {
			color.Red("%v\n", err)
		}
		return false
	case "/play":
		if err := session.Play(); err != nil {
			if errors.Is(err, client.ErrNoAudio) {
				color.Yellow("No audio for this reply.\n")
			} else {
				color.Red("playback failed: %v\n", err)
			}
		}
		return false
	}

	// 错误已经通过 renderer 展示
	_ = session.Submit(ctx, line)
	return false
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
