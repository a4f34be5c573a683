// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import "code.hybscloud.com/atomix"

// Serial identifies a Conn in logs and stats. Serials are process-unique
// and increase with every New.
type Serial = uint32

var connSerials atomix.Uint32

func nextSerial() Serial {
	return connSerials.Add(1)
}
