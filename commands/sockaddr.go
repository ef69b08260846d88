package commands

import (
	"context"
	"fmt"

	socktmpl "github.com/hashicorp/go-sockaddr/template"
	"github.com/pkg/errors"

	"github.com/subst-go/subst"
)

// Sockaddr resolves network address queries written in the go-sockaddr
// template dialect, for example ${sockaddr:GetPrivateIP}.
type Sockaddr struct{}

var _ subst.Command = (*Sockaddr)(nil)

// NewSockaddr creates a Sockaddr command.
func NewSockaddr() *Sockaddr {
	return &Sockaddr{}
}

// Process evaluates the path as a sockaddr expression.
func (s *Sockaddr) Process(_ context.Context, in subst.Input) (string, error) {
	out, err := socktmpl.Parse(fmt.Sprintf("{{ %s }}", in.Path))
	if err != nil {
		return "", errors.Wrapf(err, "sockaddr: %q", in.Path)
	}
	return out, nil
}
