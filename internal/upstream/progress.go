package upstream

import (
	"io"
	"sync"
)

// ProgressFuncは0〜100の進捗を受け取る
type ProgressFunc func(percent int)

// progressReaderは読まれたバイト数から進捗を計算する。
// 同じ値は二度通知しない。
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    ProgressFunc
	mu    sync.Mutex
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, last: -1, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		p.report(p.percent())
		p.mu.Unlock()
	}
	return n, err
}

func (p *progressReader) percent() int {
	if p.total <= 0 {
		return 0
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (p *progressReader) report(pct int) {
	if p.fn == nil || pct <= p.last {
		return
	}
	p.last = pct
	p.fn(pct)
}

// finishは送信完了時に100を保証する
func (p *progressReader) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report(100)
}
