// Package render 將聊天消息渲染為置頂日誌節點
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/pinlog"
	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
	"github.com/Yat-Muk/chatpins/internal/tui/style"
)

// UserLookup 按 id 查找用戶
type UserLookup interface {
	User(ctx context.Context, id string) (*chat.User, error)
}

// PinnerLookup 置頂者名稱
type PinnerLookup interface {
	Pinner(ctx context.Context, m *chat.Message) string
}

const (
	// 邊框與縮進佔用的列數
	gutter = 2
	// 頭部為時間戳預留的列數
	stampReserve = 18
	minWidth     = 10
)

var (
	borderStyle  = lipgloss.NewStyle().Foreground(style.Secondary)
	whisperStyle = lipgloss.NewStyle().Foreground(style.Muted).Italic(true)
	speakerStyle = lipgloss.NewStyle().Foreground(style.Primary).Bold(true)
	flavorStyle  = lipgloss.NewStyle().Foreground(style.Muted)
	pinnedStyle  = lipgloss.NewStyle().Foreground(style.Warning)
	rollStyle    = lipgloss.NewStyle().Foreground(style.Success)
)

// MessageRenderer 聊天消息渲染器
type MessageRenderer struct {
	users     UserLookup
	pins      PinnerLookup
	wrapWidth int
	logger    *zap.Logger
}

// NewMessageRenderer 創建渲染器
// wrapWidth 為正文最大寬度，實際寬度不超過視圖寬度。
func NewMessageRenderer(users UserLookup, pins PinnerLookup, wrapWidth int, log *zap.Logger) *MessageRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageRenderer{
		users:     users,
		pins:      pins,
		wrapWidth: wrapWidth,
		logger:    log.Named("render"),
	}
}

// Render 實現 pinlog.Renderer
func (r *MessageRenderer) Render(ctx context.Context, item pinlog.Item, opts pinlog.RenderOptions) (*pinlog.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := item.(*chat.Entry)
	if !ok || entry.Message == nil {
		return nil, apperrors.New(apperrors.CodeRender, fmt.Sprintf("不支持的條目類型 %T", item))
	}
	m := entry.Message
	width := r.width(opts.Width)

	node := &pinlog.Node{
		Header: r.header(ctx, m, width),
		Stamp:  m.Timestamp,
	}

	bar := borderStyle.Render("│") + " "
	if m.Flavor != "" {
		node.Body = append(node.Body, bar+flavorStyle.Render(runewidth.Truncate(m.Flavor, width, "…")))
	}
	for _, line := range wrap(m.Content, width) {
		node.Body = append(node.Body, bar+line)
	}
	if m.IsWhisper() {
		node.Body = append(node.Body, bar+whisperStyle.Render(r.whisperLine(ctx, m)))
	}
	if m.IsPinned() {
		node.Body = append(node.Body, bar+pinnedStyle.Render("📌 由 "+r.pinner(ctx, m)+" 置頂"))
	}

	for _, roll := range m.Rolls {
		detail := make([]string, 0, len(roll.Detail))
		for _, d := range roll.Detail {
			detail = append(detail, "    "+d)
		}
		node.Sections = append(node.Sections, pinlog.Section{
			Summary: rollStyle.Render(fmt.Sprintf("🎲 %s = %d", roll.Formula, roll.Total)),
			Detail:  detail,
		})
	}

	if opts.Rerender {
		r.logger.Debug("重新渲染消息", zap.String("id", m.ID))
	}
	return node, nil
}

// width 正文可用寬度
func (r *MessageRenderer) width(view int) int {
	w := r.wrapWidth
	if view > 0 && (w <= 0 || view-gutter < w) {
		w = view - gutter
	}
	if w < minWidth {
		w = minWidth
	}
	return w
}

func (r *MessageRenderer) header(ctx context.Context, m *chat.Message, width int) string {
	name := m.Speaker
	if name == "" {
		name = r.userName(ctx, m.Author)
	}
	limit := width - stampReserve
	if limit < minWidth {
		limit = minWidth
	}
	return speakerStyle.Render(runewidth.Truncate(name, limit, "…"))
}

func (r *MessageRenderer) whisperLine(ctx context.Context, m *chat.Message) string {
	names := make([]string, len(m.Whisper))
	for i, id := range m.Whisper {
		names[i] = r.userName(ctx, id)
	}
	prefix := "密語給 "
	if m.Blind {
		prefix = "暗骰 · 密語給 "
	}
	return prefix + strings.Join(names, ", ")
}

func (r *MessageRenderer) pinner(ctx context.Context, m *chat.Message) string {
	if r.pins == nil {
		return m.PinnedBy()
	}
	return r.pins.Pinner(ctx, m)
}

func (r *MessageRenderer) userName(ctx context.Context, id string) string {
	if r.users == nil {
		return id
	}
	u, err := r.users.User(ctx, id)
	if err != nil || u.Name == "" {
		return id
	}
	return u.Name
}

// wrap 按顯示寬度折行，保留原有換行
func wrap(content string, width int) []string {
	if content == "" {
		return nil
	}
	var out []string
	for _, para := range strings.Split(wordwrap.String(content, width), "\n") {
		// wordwrap 不拆分超長單詞 (以及不含空格的中文句子)
		for runewidth.StringWidth(para) > width {
			head := runewidth.Truncate(para, width, "")
			if head == "" {
				break
			}
			out = append(out, head)
			para = para[len(head):]
		}
		out = append(out, para)
	}
	return out
}
