package domain

// Identity who is performing a note operation
// Identity 笔记操作的执行者
type Identity struct {
	// UID is set from a verified token; 0 means anonymous
	// UID 来自已验证的令牌，0 表示匿名
	UID int64
	// ClientID partitions the local store between clients
	// ClientID 用于在本地存储中区分不同客户端
	ClientID string
}

// IsAnonymous reports whether no verified user is attached
func (i Identity) IsAnonymous() bool {
	return i.UID <= 0
}
