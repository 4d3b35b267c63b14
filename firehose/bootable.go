package firehose

import (
	"strconv"

	"github.com/JoshuaDoes/qdl/internal/qlog"
)

// SetBootable marks partition as the bootable storage drive.
func (c *Client) SetBootable(partition uint32) error {
	node := newElement("setbootablestoragedrive")
	node.set("value", strconv.FormatUint(uint64(partition), 10))

	if err := write(c.t, *node); err != nil {
		return err
	}
	if _, err := read(c.t, 0, nopParser); err != nil {
		qlog.L().Errorf("failed to mark partition %d as bootable", partition)
		return err
	}

	qlog.L().Infof("partition %d is now bootable", partition)
	return nil
}

// Reset requests the target reboot out of EDL mode.
func (c *Client) Reset() error {
	node := newElement("power")
	node.set("value", "reset")

	if err := write(c.t, *node); err != nil {
		return err
	}
	_, err := read(c.t, 0, nopParser)
	return err
}
