package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID keys the protected machine ID, the raw ID is never published.
const AppID = "pursuit"

// ControllerIDLen is the length of generated controller IDs.
const ControllerIDLen = 12

// ControllerID derives a stable controller ID from the machine ID,
// falling back to the hostname when it's unavailable.
func ControllerID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.V(1).Infof("machine id unavailable: %v", err)
		if id, err = os.Hostname(); err != nil {
			return "local"
		}
		return id
	}
	if len(id) > ControllerIDLen {
		id = id[:ControllerIDLen]
	}
	return id
}
