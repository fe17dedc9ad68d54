package view

import (
	"strings"

	"github.com/palemoky/kaat-color/internal/ui/common"
)

var gameRules = []string{
	"【游戏目标】",
	"  四人两队，座位 1、3 对座位 2、4。13 墩中拿到多数墩的一队赢得本局。",
	"",
	"【出牌规则】",
	"  发牌者下家先出。有领出花色必须跟，没有可出任意牌。",
	"  每墩最大的牌赢得该墩，并领出下一墩。",
	"",
	"【主牌】",
	"  不宣主。第一张没有跟领出花色的牌决定主牌，出这张牌的一队为定主方。",
	"  主牌确定后，主牌大于其他花色。",
	"",
	"【收墩】",
	"  主牌确定前赢下的墩先叠起来，谁也不拿。",
	"  主牌确定后，同一玩家连赢两墩，才能把叠墩和新墩全部收下。",
	"  第 13 墩结束后，剩余的墩归最后一墩的赢家。",
	"",
	"【Coat 与 Talent】",
	"  定主方拿下全部 13 墩：对方记一次 Coat。",
	"  对方拿下全部 13 墩：定主方记一次 Talent。",
	"",
	"【发牌轮转】",
	"  发牌方赢：13 墩由上家发牌，否则由下家发牌。",
	"  对方赢：13 墩由对家发牌，否则原发牌者继续发牌。",
	"",
	"【快捷键】",
	"  ←→：选牌   回车：出牌",
	"  C：记牌器   H：规则",
	"  N：下一局   G：重新开始",
	"  ESC：离开房间",
}

// RenderGameRules 规则说明
func RenderGameRules() string {
	return common.BoxStyle.Padding(0, 2).Render(strings.Join(gameRules, "\n"))
}

// RulesView renders the rules page.
func RulesView(width, height int) string {
	content := common.TitleStyle("📖 游戏规则") + "\n\n" + RenderGameRules() + "\n" + common.HintStyle.Render("ESC 返回")
	return place(width, height, content)
}
