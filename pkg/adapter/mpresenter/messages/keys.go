// 指示: miu200521358
// Package messages はCLI表示に使うメッセージ文言を提供する。
package messages

// メッセージ文言一覧。
const (
	LogTransferStart    = "[mu_weight_transfer] 転送開始: %s (%s -> %s)\n"
	LogTransferProgress = "[mu_weight_transfer] 転送中: %d%%\n"
	LogTransferComplete = "[mu_weight_transfer] 転送完了: %s\n"

	MessageSourceRequired    = "転送元PMXファイルを指定してください (-src)"
	MessageTargetRequired    = "転送先PMXファイルを指定してください (-dest)"
	MessageSourceExtInvalid  = "転送元拡張子が .pmx ではありません: %s"
	MessageTargetExtInvalid  = "転送先拡張子が .pmx ではありません: %s"
	MessageOutputExtInvalid  = "出力拡張子が .pmx ではありません: %s"
	MessageMethodUnsupported = "未対応の転送方式です: %s"
	MessageTransferFailed    = "ウェイト転送に失敗しました"
)
