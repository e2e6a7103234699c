package bft

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
	"sort"

	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/twogenerals/primitives"
)

// ErrUnknownNode indicates a node_id outside [0, n) was referenced.
var ErrUnknownNode = errors.New("bft: unknown node id")

// Share is one node's deterministic contribution toward an aggregate
// signature over a given message.
type Share struct {
	NodeID uint64
	Bytes  [32]byte
}

// ThresholdSignature is an aggregate signature over a message, verifiable
// only if it records at least T contributing nodes.
type ThresholdSignature struct {
	ContributingNodes []uint64
	Bytes             [32]byte
}

// ThresholdScheme is the reference (2f+1)-of-(3f+1) share scheme: a
// deterministic-hash stand-in for testing the aggregation protocol, not a
// real BLS pairing scheme. Per-node key material is derived from a shared
// master secret via HKDF-SHA256, simulating what a distributed
// key-generation ceremony would produce in a real deployment.
type ThresholdScheme struct {
	config   Config
	nodeKeys [][32]byte
}

// HashRoundValue computes BLAKE3(round_be_u64 || value), the digest signed
// into shares and threshold signatures for a given protocol round.
func HashRoundValue(round uint64, value []byte) [32]byte {
	var roundBytes [8]byte
	binary.BigEndian.PutUint64(roundBytes[:], round)
	return primitives.HashMulti(roundBytes[:], value)
}

// NewThresholdScheme derives n per-node keys from masterSecret via HKDF,
// one per node id, each under a distinct info string for domain separation.
func NewThresholdScheme(config Config, masterSecret []byte) (*ThresholdScheme, error) {
	ts := &ThresholdScheme{config: config, nodeKeys: make([][32]byte, config.N)}
	for i := uint64(0); i < config.N; i++ {
		info := nodeInfo(i)
		kdf := hkdf.New(sha256.New, masterSecret, nil, info)
		if _, err := io.ReadFull(kdf, ts.nodeKeys[i][:]); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func nodeInfo(nodeID uint64) []byte {
	info := make([]byte, len("tgp-bft-node-")+8)
	copy(info, "tgp-bft-node-")
	binary.BigEndian.PutUint64(info[len("tgp-bft-node-"):], nodeID)
	return info
}

// CreateShare deterministically derives node nodeID's share over message.
func (ts *ThresholdScheme) CreateShare(nodeID uint64, message []byte) (Share, error) {
	if nodeID >= ts.config.N {
		return Share{}, ErrUnknownNode
	}
	return Share{NodeID: nodeID, Bytes: primitives.HashMulti(ts.nodeKeys[nodeID][:], message)}, nil
}

// VerifyShare reports whether share is exactly the expected deterministic
// share for nodeID on message.
func (ts *ThresholdScheme) VerifyShare(nodeID uint64, message []byte, share Share) bool {
	if nodeID >= ts.config.N || share.NodeID != nodeID {
		return false
	}
	expected, err := ts.CreateShare(nodeID, message)
	if err != nil {
		return false
	}
	return expected.Bytes == share.Bytes
}

// Aggregate deduplicates shares by node id (keeping the first occurrence),
// retains only those passing VerifyShare, and — if at least T remain after
// truncating to exactly T in that dedup order — produces a deterministic
// aggregate signature. Returns ok=false if fewer than T valid shares exist.
func (ts *ThresholdScheme) Aggregate(message []byte, shares []Share) (ThresholdSignature, bool) {
	seen := make(map[uint64]bool, len(shares))
	var ordered []uint64
	for _, s := range shares {
		if seen[s.NodeID] {
			continue
		}
		seen[s.NodeID] = true
		if !ts.VerifyShare(s.NodeID, message, s) {
			continue
		}
		ordered = append(ordered, s.NodeID)
	}

	threshold := ts.config.Threshold()
	if uint64(len(ordered)) < threshold {
		return ThresholdSignature{}, false
	}
	ordered = ordered[:threshold]

	contributing := append([]uint64(nil), ordered...)
	sort.Slice(contributing, func(i, j int) bool { return contributing[i] < contributing[j] })

	return ThresholdSignature{
		ContributingNodes: contributing,
		Bytes:             ts.combine(message, ordered),
	}, true
}

// VerifyThresholdSignature recomputes the aggregation over sig's first T
// contributing nodes (after validating each id is in range) and checks
// byte equality against sig.Bytes.
func (ts *ThresholdScheme) VerifyThresholdSignature(message []byte, sig ThresholdSignature) bool {
	threshold := ts.config.Threshold()
	if uint64(len(sig.ContributingNodes)) < threshold {
		return false
	}
	for _, id := range sig.ContributingNodes {
		if id >= ts.config.N {
			return false
		}
	}
	ids := append([]uint64(nil), sig.ContributingNodes...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ids = ids[:threshold]

	return ts.combine(message, ids) == sig.Bytes
}

// combine XOR-folds the named nodes' shares on message and hashes the
// result with message appended. This is a reference stand-in; a production
// deployment substitutes real BLS pairing aggregation with the same
// verify/aggregate interface.
func (ts *ThresholdScheme) combine(message []byte, nodeIDs []uint64) [32]byte {
	var folded [32]byte
	for _, id := range nodeIDs {
		share, err := ts.CreateShare(id, message)
		if err != nil {
			continue
		}
		for i := range folded {
			folded[i] ^= share.Bytes[i]
		}
	}
	return primitives.HashMulti(folded[:], message)
}
