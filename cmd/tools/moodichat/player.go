package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/zhouzirui/moodi/backend/internal/client"
)

// execPlayer 把音频写入临时 mp3 文件并交给外部播放器
type execPlayer struct {
	command []string
}

func newExecPlayer(command string) *execPlayer {
	return &execPlayer{command: strings.Fields(command)}
}

func (p *execPlayer) Play(audio []byte) (client.Playback, error) {
	file, err := os.CreateTemp("", "moodi-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("create temp audio: %w", err)
	}
	if _, err := file.Write(audio); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("write temp audio: %w", err)
	}
	file.Close()

	args := append(append([]string(nil), p.command[1:]...), file.Name())
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("start %s: %w", p.command[0], err)
	}

	pb := &execPlayback{cmd: cmd, done: make(chan struct{})}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("[client] player exited: %v", err)
		}
		os.Remove(file.Name())
		close(pb.done)
	}()
	return pb, nil
}

type execPlayback struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

func (p *execPlayback) Stop() {
	p.once.Do(func() {
		select {
		case <-p.done:
		default:
			_ = p.cmd.Process.Kill()
		}
	})
}

func (p *execPlayback) Done() <-chan struct{} {
	return p.done
}
