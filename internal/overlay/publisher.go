package overlay

import (
	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/action"
	"github.com/frudas24/touchsampler/internal/sampler"
)

// Publisher renders sampler ticks into a Stream.
type Publisher struct {
	stream  *Stream
	cat     *action.Catalog
	width   int
	height  int
	quality int
	log     logrus.FieldLogger
}

// NewPublisher returns a publisher drawing on a width x height canvas.
func NewPublisher(stream *Stream, cat *action.Catalog, width, height, quality int, log logrus.FieldLogger) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Publisher{
		stream:  stream,
		cat:     cat,
		width:   width,
		height:  height,
		quality: quality,
		log:     log.WithField("component", "overlay"),
	}
}

// HandleTick renders a tick when the stream is due and has viewers; it is
// subscribed to sampler.TopicTick.
func (p *Publisher) HandleTick(t sampler.Tick) {
	if p.stream.Clients() == 0 || !p.stream.Due() {
		return
	}
	jpg, err := EncodeJPEG(Render(t.Frame, p.cat, t.Actions, p.width, p.height), p.quality)
	if err != nil {
		p.log.WithError(err).Warn("overlay: encode failed")
		return
	}
	p.stream.Publish(jpg)
}
