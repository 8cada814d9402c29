package service

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookService 店面增量刷新通知
// 商品变更后异步通知店面，重建对应页面的缓存。
// 通知失败只记日志，不影响主流程。
type WebhookService struct {
	client *resty.Client
}

func NewWebhookService() *WebhookService {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2*time.Second).
		SetHeader("User-Agent", "Shopfarm-Go-App/1.0")

	return &WebhookService{client: client}
}

// RevalidateProduct 通知店面某个商品页需要刷新
func (s *WebhookService) RevalidateProduct(revalidateURL string, storeID, productID int64) error {
	if revalidateURL == "" {
		return nil
	}

	resp, err := s.client.R().
		SetBody(map[string]interface{}{
			"store_id":   storeID,
			"product_id": productID,
			"paths":      []string{fmt.Sprintf("/products/%d", productID)},
		}).
		Post(revalidateURL)
	if err != nil {
		log.Printf("[Webhook] 通知店面刷新失败: store=%d product=%d err=%v", storeID, productID, err)
		return err
	}
	if resp.IsError() {
		log.Printf("[Webhook] 店面刷新响应异常: store=%d product=%d status=%d", storeID, productID, resp.StatusCode())
		return fmt.Errorf("revalidate 响应状态 %d", resp.StatusCode())
	}

	log.Printf("[Webhook] 店面刷新完成: store=%d product=%d", storeID, productID)
	return nil
}
