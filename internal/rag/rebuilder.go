package rag

import (
	"context"
	"sync"

	"zhipan/pkg/logger"
)

type rebuildTask struct {
	userID uint
	force  bool
}

// Rebuilder 是文件变更后触发向量库重建的后台任务池。
// Enqueue 不阻塞调用方：队列满时任务被丢弃并记录警告，重建结果只记日志，
// 从不回传给请求方。
type Rebuilder struct {
	client *Client
	tasks  chan rebuildTask
	log    *logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRebuilder 创建并启动一个重建任务池。
func NewRebuilder(client *Client, workers, queueSize int) *Rebuilder {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Rebuilder{
		client: client,
		tasks:  make(chan rebuildTask, queueSize),
		log:    logger.New("vector_rebuilder"),
		cancel: cancel,
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker(ctx)
	}
	return r
}

// Enqueue 提交一次强制重建。文件上传、创建、删除、重命名、移动后调用。
func (r *Rebuilder) Enqueue(userID uint) {
	r.enqueue(rebuildTask{userID: userID, force: true})
}

// EnqueueInitial 提交一次非强制构建（向量库不存在时才创建）。
func (r *Rebuilder) EnqueueInitial(userID uint) {
	r.enqueue(rebuildTask{userID: userID, force: false})
}

func (r *Rebuilder) enqueue(task rebuildTask) {
	select {
	case r.tasks <- task:
		r.log.WithUser(task.userID).Debug("向量存储重建任务已入队")
	default:
		r.log.WithUser(task.userID).Warn("重建队列已满，丢弃向量存储重建任务")
	}
}

// Close 停止接收新任务并等待在途任务完成。
func (r *Rebuilder) Close() {
	close(r.tasks)
	r.wg.Wait()
	r.cancel()
}

func (r *Rebuilder) worker(ctx context.Context) {
	defer r.wg.Done()
	for task := range r.tasks {
		result := r.client.BuildVectorStore(ctx, task.userID, task.force)
		switch result.Status {
		case StatusError:
			r.log.WithUser(task.userID).Errorf("异步构建向量存储失败: %s", result.Message)
		case StatusDisabled:
			// 禁用时 BuildVectorStore 已记录，无需重复。
		default:
			r.log.WithUser(task.userID).Infof("异步构建向量存储完成，状态: %s", result.Status)
		}
	}
}
