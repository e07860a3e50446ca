package world

import (
	"crypto/sha256"
	"encoding/hex"

	"museumbot/internal/sim/world/io/digestcodec"
	modelpkg "museumbot/internal/sim/world/kernel/model"
)

// stateDigest hashes everything that influences future steps, so two runs with the same
// inputs and seed produce identical digest streams.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestcodec.WriteU64(h, &tmp, nowTick)
	digestcodec.WriteU64(h, &tmp, w.rng.Calls())

	ns := w.nav.State()
	digestVec(h, &tmp, ns.Pos)
	digestVec(h, &tmp, ns.Front)
	digestcodec.WriteF64(h, &tmp, ns.Heading)
	digestcodec.WriteU64(h, &tmp, uint64(ns.Mode))
	digestcodec.WriteU64(h, &tmp, uint64(ns.WaypointIndex))
	digestcodec.WriteBool(h, ns.Target != nil)
	if ns.Target != nil {
		digestVec(h, &tmp, *ns.Target)
	}

	digestcodec.WriteString(h, &tmp, w.candidate)

	ss := w.scan.State()
	digestcodec.WriteU64(h, &tmp, uint64(ss.Phase))
	digestcodec.WriteString(h, &tmp, ss.ExhibitID)
	digestcodec.WriteF64(h, &tmp, ss.Progress)

	ps := w.panel.State()
	digestcodec.WriteBool(h, ps.Showing)
	digestcodec.WriteString(h, &tmp, ps.ExhibitID)
	digestcodec.WriteF64(h, &tmp, ps.Elapsed)

	digestcodec.WriteBool(h, w.quit)

	return hex.EncodeToString(h.Sum(nil))
}

func digestVec(h digestcodec.Writer, tmp *[8]byte, v modelpkg.Vec3) {
	digestcodec.WriteF64(h, tmp, v.X)
	digestcodec.WriteF64(h, tmp, v.Y)
	digestcodec.WriteF64(h, tmp, v.Z)
}
