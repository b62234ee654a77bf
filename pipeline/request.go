package pipeline

import (
	"fmt"
	"strings"

	"github.com/chaos-io/bgswap/compose"
)

// BackgroundOption 用户选择的背景方式，值即界面上显示的名字
type BackgroundOption string

const (
	OptionRemoveOnly BackgroundOption = "Remove Only (Default)"
	OptionSolidColor BackgroundOption = "Solid Color"
	OptionPreset     BackgroundOption = "Preset Backgrounds"
	OptionCustom     BackgroundOption = "Custom Background"
)

var optionKeys = map[string]BackgroundOption{
	"":            OptionRemoveOnly,
	"remove_only": OptionRemoveOnly,
	"solid_color": OptionSolidColor,
	"preset":      OptionPreset,
	"custom":      OptionCustom,
}

// ParseBackgroundOption 接受简写 key（remove_only / solid_color / preset / custom）或完整名字
func ParseBackgroundOption(s string) (BackgroundOption, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if o, ok := optionKeys[key]; ok {
		return o, nil
	}
	for _, o := range []BackgroundOption{OptionRemoveOnly, OptionSolidColor, OptionPreset, OptionCustom} {
		if strings.EqualFold(string(o), strings.TrimSpace(s)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOption, s)
}

func (o BackgroundOption) RemoveOnly() bool {
	return o == OptionRemoveOnly
}

// FilePrefix 输出文件名前缀：只去背景为 no_bg，其余为名字转小写、空格换成下划线
func (o BackgroundOption) FilePrefix() string {
	if o.RemoveOnly() {
		return "no_bg"
	}
	return strings.ReplaceAll(strings.ToLower(string(o)), " ", "_")
}

// Upload 一张上传的图片
type Upload struct {
	Name string
	Data []byte
}

// Request 一次处理请求，创建后不可修改
type Request struct {
	option     BackgroundOption
	background compose.Background
	uploads    []Upload
}

// NewRequest 校验并创建请求。
//
// 只去背景时忽略 bg；其他方式必须给出纯色或图片背景。
func NewRequest(option BackgroundOption, bg compose.Background, uploads []Upload) (Request, error) {
	switch option {
	case OptionRemoveOnly:
		bg = compose.None()
	case OptionSolidColor, OptionPreset, OptionCustom:
		if bg.IsNone() {
			return Request{}, fmt.Errorf("%w for %q", ErrNoBackground, option)
		}
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	if len(uploads) == 0 {
		return Request{}, ErrNoImages
	}

	return Request{
		option:     option,
		background: bg,
		uploads:    append([]Upload(nil), uploads...),
	}, nil
}

func (r Request) Option() BackgroundOption {
	return r.option
}

func (r Request) Background() compose.Background {
	return r.background
}

func (r Request) Uploads() []Upload {
	return append([]Upload(nil), r.uploads...)
}

func (r Request) Len() int {
	return len(r.uploads)
}
