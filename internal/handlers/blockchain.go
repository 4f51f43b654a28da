package handlers

import (
	"tcw1/internal/services/blockchain"
	"tcw1/internal/services/pricefeed"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BlockchainHandler struct {
	chainService blockchain.Service
	prices       pricefeed.Service
}

func NewBlockchainHandler(chainService blockchain.Service, prices pricefeed.Service) *BlockchainHandler {
	return &BlockchainHandler{
		chainService: chainService,
		prices:       prices,
	}
}

// GetPrices returns the current quotes for every supported currency.
func (h *BlockchainHandler) GetPrices(c *fiber.Ctx) error {
	quotes, err := h.prices.Quotes(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", quotes)
}

func (h *BlockchainHandler) GetChart(c *fiber.Ctx) error {
	days := pricefeed.NormalizeDays(c.QueryInt("days", pricefeed.DefaultChartDays))
	currency := c.Params("currency")

	points, err := h.prices.Chart(c.UserContext(), currency, days)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", fiber.Map{
		"currency": currency,
		"days":     days,
		"prices":   points,
	})
}

func (h *BlockchainHandler) GetRecentTransactions(c *fiber.Ctx) error {
	txs, err := h.chainService.GetRecentTransactions(c.UserContext(), c.QueryInt("limit", blockchain.DefaultRecentLimit))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", txs)
}

func (h *BlockchainHandler) ExecuteTrade(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input blockchain.TradeInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	input.UserID = claims.UserID

	result, err := h.chainService.ExecuteTrade(c.UserContext(), input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Trade submitted", result)
}

func (h *BlockchainHandler) GetTransactions(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	txs, err := h.chainService.GetUserTransactions(c.UserContext(), claims.UserID, blockchain.ListOptions{
		Limit:  c.QueryInt("limit", blockchain.DefaultTransactionLimit),
		Status: c.Query("status"),
		Type:   c.Query("type"),
	})
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", txs)
}

// GetTransaction is owner only; other users get a 404.
func (h *BlockchainHandler) GetTransaction(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	tx, err := h.chainService.GetTransactionByHash(c.UserContext(), c.Params("hash"))
	if err != nil {
		return handleError(c, err)
	}
	if tx.UserID != claims.UserID && !claims.IsAdmin() {
		return response.NotFound(c, blockchain.ErrTransactionNotFound.Error())
	}
	return response.Success(c, "", tx)
}

func (h *BlockchainHandler) VerifyTransaction(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	existing, err := h.chainService.GetTransactionByHash(c.UserContext(), c.Params("hash"))
	if err != nil {
		return handleError(c, err)
	}
	if existing.UserID != claims.UserID && !claims.IsAdmin() {
		return response.NotFound(c, blockchain.ErrTransactionNotFound.Error())
	}

	tx, err := h.chainService.VerifyTransaction(c.UserContext(), existing.TransactionHash)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", tx)
}

func (h *BlockchainHandler) GetStats(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	stats, err := h.chainService.GetTradingStats(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", stats)
}

// Convert prices an amount of one currency in another.
func (h *BlockchainHandler) Convert(c *fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	amount := c.QueryFloat("amount")

	converted, err := h.prices.Convert(c.UserContext(), amount, from, to)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", fiber.Map{
		"amount": amount,
		"from":   from,
		"to":     to,
		"result": converted,
	})
}
