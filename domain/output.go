package domain

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Printer 终端输出, 由调用方注入各个模块, 测试时可替换为任意io.Writer
type Printer struct {
	Out     io.Writer
	Err     io.Writer
	NoColor bool
}

// NewPrinter 结果写到out, 状态和进度写到errw
func NewPrinter(out, errw io.Writer, noColor bool) *Printer {
	return &Printer{Out: out, Err: errw, NoColor: noColor}
}

func (p *Printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.NoColor {
		c.DisableColor()
	}
	return c
}

// Status 输出一行状态信息
func (p *Printer) Status(format string, args ...interface{}) {
	p.paint(color.FgCyan).Fprintf(p.Err, "[*] "+format+"\n", args...)
}

// Nothing 未发现任何子域名时的提示
func (p *Printer) Nothing(root string) {
	p.paint(color.FgYellow).Fprintf(p.Err, "[!] no subdomains found for %s\n", root)
}

// Render 逐行输出发现的子域名
func (p *Printer) Render(hosts []string) {
	c := p.paint(color.FgGreen)
	for _, h := range hosts {
		c.Fprintf(p.Out, "[+] %s\n", h)
	}
}

// Progress 创建字典探测使用的进度条
func (p *Printer) Progress(total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.Err),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionEnableColorCodes(!p.NoColor),
		progressbar.OptionClearOnFinish(),
	)
}

// WriteResults 覆盖写入结果文件, 每行一个域名
func WriteResults(path string, hosts []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for _, h := range hosts {
		if _, err = fmt.Fprintln(w, h); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return w.Flush()
}
