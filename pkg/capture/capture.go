package capture

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
)

const defaultFilePerm = 0o644

// Writer 把交易所原始字节流追加到文件里，格式就是线上的行协议，
// 可以直接拿给 ampere-client -replay 回放
type Writer struct {
	mu sync.Mutex
	f  *os.File
	bw *bufio.Writer
	// 已写入的逻辑偏移（包含还在 bufio 里的数据）
	off int64
}

func OpenWrite(path string, buffSize int) (*Writer, error) {
	if buffSize <= 0 {
		buffSize = 64 << 10
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &Writer{
		f:   file,
		bw:  bufio.NewWriterSize(file, buffSize),
		off: stat.Size(),
	}, nil
}

// Write 实现 io.Writer，给 io.TeeReader 用。
// 每次写完就 flush 到内核，进程崩了也只丢最后一段
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.bw.Write(p)
	w.off += int64(n)
	if err != nil {
		return n, err
	}
	return n, w.bw.Flush()
}

func (w *Writer) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.off
}

// Close 前刷盘
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}
