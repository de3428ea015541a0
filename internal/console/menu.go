package console

import (
	"fmt"
	"strings"

	"github.com/larsks/ledremote/internal/protocol"
)

// MenuItem is one line of the menu. Index is the number the user types.
type MenuItem struct {
	Index int
	Label string
}

func (m MenuItem) String() string {
	return fmt.Sprintf("%d. %s", m.Index, m.Label)
}

// RenderMenu builds one entry per output, offering whichever transition the
// status word makes available. StatusUnknown renders as the initial status.
func RenderMenu(status protocol.Status, names []string) []MenuItem {
	status = status.Resolve(len(names))
	items := make([]MenuItem, len(names))
	for i, name := range names {
		verb := "Turn ON "
		if status.Offers(protocol.OutputID(i)) == protocol.Off {
			verb = "Turn OFF"
		}
		items[i] = MenuItem{
			Index: i + 1,
			Label: fmt.Sprintf("%s - %s", verb, strings.ToUpper(name)),
		}
	}
	return items
}

// MapChoice turns a menu index into the command the menu offered at that
// position.
func MapChoice(index int, status protocol.Status, outputCount int) (protocol.Command, error) {
	if index < 1 || index > outputCount {
		return protocol.Command{}, fmt.Errorf("%w: %d", ErrNoCommand, index)
	}
	id := protocol.OutputID(index - 1)
	return protocol.Command{
		Output: id,
		Target: status.Resolve(outputCount).Offers(id),
	}, nil
}
