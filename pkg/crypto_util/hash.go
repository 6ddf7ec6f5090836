package crypto_util

import (
	"crypto/sha256"

	"lukechampine.com/blake3"
)

// DoubleSHA256 计算 SHA256(SHA256(data))。
// 比特币交易 ID 与前序交易绑定证明都使用这个哈希。
func DoubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// CalculateSHA256 计算输入的 SHA256 哈希值。
func CalculateSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// FrameChecksum 计算主机链路帧的 Blake3 校验和（截取前 4 字节）。
// Blake3 是一种现代、高性能的加密哈希函数。
func FrameChecksum(data []byte) [4]byte {
	sum := blake3.Sum256(data)
	var out [4]byte
	copy(out[:], sum[:4])
	return out
}
