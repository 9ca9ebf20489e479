package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"zhipan/internal/models"
)

// TreeCache 在 Redis 中缓存组装好的文件夹树，用来抵消逐节点递归
// 查询的开销。任何文件夹变更都会使对应用户的缓存失效。
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache 创建一个文件夹树缓存。ttl 为 0 表示不过期。
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	return &TreeCache{client: client, ttl: ttl}
}

func treeKey(userID uint) string {
	return fmt.Sprintf("zhipan:foldertree:%d", userID)
}

// Get 返回缓存的文件夹树；未命中或反序列化失败时 ok 为 false。
func (c *TreeCache) Get(ctx context.Context, userID uint) ([]*models.Folder, bool) {
	data, err := c.client.Get(ctx, treeKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var tree []*models.Folder
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, false
	}
	return tree, true
}

// Set 写入缓存。序列化或写入失败只是缓存未命中，不影响调用方。
func (c *TreeCache) Set(ctx context.Context, userID uint, tree []*models.Folder) {
	data, err := json.Marshal(tree)
	if err != nil {
		return
	}
	c.client.Set(ctx, treeKey(userID), data, c.ttl)
}

// Invalidate 删除某用户的缓存。
func (c *TreeCache) Invalidate(ctx context.Context, userID uint) {
	c.client.Del(ctx, treeKey(userID))
}
