package log

import (
	"bytes"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// color is a console encoder that lets ANSI sequences in messages through
// instead of escaping them, so highlighted verdicts keep their colour.
type color struct {
	*zapcore.EncoderConfig
	zapcore.Encoder
}

var (
	escapedESC = []byte("\\u001b")
	rawESC     = []byte("\u001b")
)

func NewColor(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return color{
		EncoderConfig: &cfg,
		Encoder:       zapcore.NewConsoleEncoder(cfg),
	}
}

func (c color) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := c.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(buf.Bytes(), escapedESC) {
		return buf, nil
	}
	unescaped := bytes.ReplaceAll(buf.Bytes(), escapedESC, rawESC)
	buf.Reset()
	_, _ = buf.Write(unescaped)
	return buf, nil
}

func (c color) Clone() zapcore.Encoder {
	return color{
		EncoderConfig: c.EncoderConfig,
		Encoder:       c.Encoder.Clone(),
	}
}
